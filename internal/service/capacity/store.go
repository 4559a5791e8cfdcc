package capacity

import (
	"context"
	"fmt"

	"github.com/hospiq/scheduling-api/internal/model"
	"github.com/hospiq/scheduling-api/internal/repository"
	apperrors "github.com/hospiq/scheduling-api/pkg/errors"
)

// StoreLedger derives slot occupancy from non-terminal appointment rows,
// so the appointment table is the single source of truth. TryReserve only
// verifies headroom; the appointment insert that follows, executed under
// the slot guard, is the actual reservation. Release likewise rides on
// the status flip to a terminal state.
type StoreLedger struct {
	appointments repository.AppointmentRepository
}

func NewStoreLedger(appointments repository.AppointmentRepository) *StoreLedger {
	return &StoreLedger{appointments: appointments}
}

func (l *StoreLedger) TryReserve(ctx context.Context, key model.SlotKey, capacity int) error {
	if capacity < 1 {
		return apperrors.NewInvariantViolation(fmt.Sprintf("slot %s has non-positive capacity %d", key, capacity))
	}

	count, err := l.appointments.CountActiveForSlot(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to count slot occupancy: %w", err)
	}
	if count >= capacity {
		return apperrors.NewSlotFull(fmt.Sprintf("slot %s is fully booked", key))
	}
	return nil
}

// Release is a no-op: moving the row to a terminal state (or to another
// slot) is what returns the unit, and the status transition rules make
// underflow structurally impossible here.
func (l *StoreLedger) Release(ctx context.Context, key model.SlotKey) error {
	return nil
}

func (l *StoreLedger) Count(ctx context.Context, key model.SlotKey) (int, error) {
	return l.appointments.CountActiveForSlot(ctx, key)
}
