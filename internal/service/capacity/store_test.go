package capacity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/hospiq/scheduling-api/internal/model"
	"github.com/hospiq/scheduling-api/internal/repository"
	apperrors "github.com/hospiq/scheduling-api/pkg/errors"
)

type apptCountStub struct {
	repository.AppointmentRepository
	count int
	err   error
}

func (s *apptCountStub) CountActiveForSlot(ctx context.Context, key model.SlotKey) (int, error) {
	return s.count, s.err
}

func (s *apptCountStub) CountActiveForPatient(ctx context.Context, patientID uuid.UUID, key model.SlotKey) (int, error) {
	return 0, nil
}

func TestStoreLedgerReserveChecksHeadroom(t *testing.T) {
	tests := []struct {
		name     string
		occupied int
		capacity int
		wantCode apperrors.ErrorCode
		wantOK   bool
	}{
		{"empty slot", 0, 3, 0, true},
		{"one seat left", 2, 3, 0, true},
		{"at capacity", 3, 3, apperrors.ErrSlotFull, false},
		{"over capacity from a bad backfill", 4, 3, apperrors.ErrSlotFull, false},
		{"non-positive capacity", 0, 0, apperrors.ErrInvariantViolation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := NewStoreLedger(&apptCountStub{count: tt.occupied})
			err := ledger.TryReserve(context.Background(), slotKey(), tt.capacity)
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
			}
		})
	}
}

func TestStoreLedgerPropagatesCountFailure(t *testing.T) {
	dbErr := errors.New("connection reset")
	ledger := NewStoreLedger(&apptCountStub{err: dbErr})

	err := ledger.TryReserve(context.Background(), slotKey(), 2)
	assert.ErrorIs(t, err, dbErr)
}

func TestStoreLedgerReleaseIsStructural(t *testing.T) {
	// The status flip on the appointment row is the release; the ledger
	// has nothing to undo.
	ledger := NewStoreLedger(&apptCountStub{})
	assert.NoError(t, ledger.Release(context.Background(), slotKey()))
}

func TestStoreLedgerCount(t *testing.T) {
	ledger := NewStoreLedger(&apptCountStub{count: 2})

	count, err := ledger.Count(context.Background(), slotKey())
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}
