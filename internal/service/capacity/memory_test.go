package capacity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospiq/scheduling-api/internal/model"
	apperrors "github.com/hospiq/scheduling-api/pkg/errors"
)

func slotKey() model.SlotKey {
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	return model.SlotKey{
		DoctorID: uuid.MustParse("7b8a1f2c-0000-4000-8000-000000000001"),
		StartAt:  start,
		EndAt:    start.Add(30 * time.Minute),
	}
}

func TestMemoryLedgerReserveUpToCapacity(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()
	key := slotKey()

	for i := 0; i < 3; i++ {
		require.NoError(t, ledger.TryReserve(ctx, key, 3))
	}

	err := ledger.TryReserve(ctx, key, 3)
	assert.Equal(t, apperrors.ErrSlotFull, apperrors.CodeOf(err))

	count, err := ledger.Count(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMemoryLedgerReleaseFreesSeat(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()
	key := slotKey()

	require.NoError(t, ledger.TryReserve(ctx, key, 1))
	require.Error(t, ledger.TryReserve(ctx, key, 1))

	require.NoError(t, ledger.Release(ctx, key))
	assert.NoError(t, ledger.TryReserve(ctx, key, 1))
}

func TestMemoryLedgerNeverGoesNegative(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()
	key := slotKey()

	err := ledger.Release(ctx, key)
	assert.Equal(t, apperrors.ErrInvariantViolation, apperrors.CodeOf(err))

	require.NoError(t, ledger.TryReserve(ctx, key, 2))
	require.NoError(t, ledger.Release(ctx, key))
	err = ledger.Release(ctx, key)
	assert.Equal(t, apperrors.ErrInvariantViolation, apperrors.CodeOf(err))

	count, err := ledger.Count(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMemoryLedgerRejectsBrokenCapacity(t *testing.T) {
	ledger := NewMemoryLedger()

	err := ledger.TryReserve(context.Background(), slotKey(), 0)
	assert.Equal(t, apperrors.ErrInvariantViolation, apperrors.CodeOf(err))
}

func TestMemoryLedgerKeysAreIndependent(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	first := slotKey()
	second := first
	second.StartAt = first.StartAt.Add(30 * time.Minute)
	second.EndAt = first.EndAt.Add(30 * time.Minute)

	require.NoError(t, ledger.TryReserve(ctx, first, 1))
	assert.NoError(t, ledger.TryReserve(ctx, second, 1))
}

// TestMemoryLedgerConcurrentOversellAttempt hammers one slot from many
// goroutines; exactly capacity reservations may win.
func TestMemoryLedgerConcurrentOversellAttempt(t *testing.T) {
	const (
		workers  = 64
		capacity = 5
	)

	ledger := NewMemoryLedger()
	ctx := context.Background()
	key := slotKey()

	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- ledger.TryReserve(ctx, key, capacity)
		}()
	}
	wg.Wait()
	close(results)

	won := 0
	for err := range results {
		if err == nil {
			won++
		} else {
			assert.Equal(t, apperrors.ErrSlotFull, apperrors.CodeOf(err))
		}
	}
	assert.Equal(t, capacity, won)

	count, err := ledger.Count(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, capacity, count)
}
