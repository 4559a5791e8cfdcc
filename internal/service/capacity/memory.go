package capacity

import (
	"context"
	"fmt"
	"sync"

	"github.com/hospiq/scheduling-api/internal/model"
	apperrors "github.com/hospiq/scheduling-api/pkg/errors"
)

// MemoryLedger keeps slot occupancy in process memory. It is the ledger
// for single-node deployments and tests.
type MemoryLedger struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		counts: make(map[string]int),
	}
}

func (l *MemoryLedger) TryReserve(_ context.Context, key model.SlotKey, capacity int) error {
	if capacity < 1 {
		return apperrors.NewInvariantViolation(fmt.Sprintf("slot %s has non-positive capacity %d", key, capacity))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	k := key.String()
	if l.counts[k] >= capacity {
		return apperrors.NewSlotFull(fmt.Sprintf("slot %s is fully booked", key))
	}
	l.counts[k]++
	return nil
}

func (l *MemoryLedger) Release(_ context.Context, key model.SlotKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := key.String()
	if l.counts[k] <= 0 {
		return apperrors.NewInvariantViolation(fmt.Sprintf("release of slot %s with zero occupancy", key))
	}
	l.counts[k]--
	if l.counts[k] == 0 {
		delete(l.counts, k)
	}
	return nil
}

func (l *MemoryLedger) Count(_ context.Context, key model.SlotKey) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[key.String()], nil
}
