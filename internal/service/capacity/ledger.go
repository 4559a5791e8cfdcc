package capacity

import (
	"context"

	"github.com/hospiq/scheduling-api/internal/model"
)

// Ledger tracks how many appointments occupy each slot and enforces
// 0 <= count <= capacity. TryReserve and Release are the only mutations;
// both are safe under concurrent use.
type Ledger interface {
	// TryReserve claims one unit of the slot's capacity, failing with a
	// SlotFull error when the slot is at capacity.
	TryReserve(ctx context.Context, key model.SlotKey, capacity int) error
	// Release returns one unit, failing with an InvariantViolation error
	// when the slot has no active reservations.
	Release(ctx context.Context, key model.SlotKey) error
	Count(ctx context.Context, key model.SlotKey) (int, error)
}
