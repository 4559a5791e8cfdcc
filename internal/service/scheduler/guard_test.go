package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hospiq/scheduling-api/pkg/errors"
)

var guardSlotStart = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func TestGuardAcquireRelease(t *testing.T) {
	guard := NewSlotGuard(time.Second, nil)
	doctorID := uuid.New()

	release, err := guard.Acquire(context.Background(), doctorID, guardSlotStart)
	require.NoError(t, err)
	release()

	// Released means a follow-up acquire succeeds immediately.
	release, err = guard.Acquire(context.Background(), doctorID, guardSlotStart)
	require.NoError(t, err)
	release()

	// Release twice is harmless.
	release()
}

func TestGuardTimesOutOnContention(t *testing.T) {
	guard := NewSlotGuard(50*time.Millisecond, nil)
	doctorID := uuid.New()

	release, err := guard.Acquire(context.Background(), doctorID, guardSlotStart)
	require.NoError(t, err)
	defer release()

	_, err = guard.Acquire(context.Background(), doctorID, guardSlotStart)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBookingTimeout, apperrors.CodeOf(err))
}

func TestGuardDifferentKeysDoNotContend(t *testing.T) {
	guard := NewSlotGuard(50*time.Millisecond, nil)
	doctorID := uuid.New()

	releaseFirst, err := guard.Acquire(context.Background(), doctorID, guardSlotStart)
	require.NoError(t, err)
	defer releaseFirst()

	// Same doctor, next slot.
	releaseSecond, err := guard.Acquire(context.Background(), doctorID, guardSlotStart.Add(30*time.Minute))
	require.NoError(t, err)
	releaseSecond()

	// Same slot, another doctor.
	releaseThird, err := guard.Acquire(context.Background(), uuid.New(), guardSlotStart)
	require.NoError(t, err)
	releaseThird()
}

func TestGuardRespectsContextCancel(t *testing.T) {
	guard := NewSlotGuard(time.Minute, nil)
	doctorID := uuid.New()

	release, err := guard.Acquire(context.Background(), doctorID, guardSlotStart)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := guard.Acquire(ctx, doctorID, guardSlotStart)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled acquire did not return")
	}
}

func TestGuardSerializesCriticalSections(t *testing.T) {
	guard := NewSlotGuard(5*time.Second, nil)
	doctorID := uuid.New()

	const workers = 16
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		inside int
		peak   int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := guard.Acquire(context.Background(), doctorID, guardSlotStart)
			if err != nil {
				t.Error(err)
				return
			}
			defer release()

			mu.Lock()
			inside++
			if inside > peak {
				peak = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, peak, "two bookings entered the same slot's critical section")
}

func TestGuardDropsIdleKeys(t *testing.T) {
	guard := NewSlotGuard(time.Second, nil)

	for i := 0; i < 10; i++ {
		release, err := guard.Acquire(context.Background(), uuid.New(), guardSlotStart)
		require.NoError(t, err)
		release()
	}

	guard.mu.Lock()
	defer guard.mu.Unlock()
	assert.Empty(t, guard.locks, "released keys must not accumulate")
}

func TestGuardZeroWaitUsesDefault(t *testing.T) {
	guard := NewSlotGuard(0, nil)
	assert.Equal(t, DefaultGuardWait, guard.wait)
}
