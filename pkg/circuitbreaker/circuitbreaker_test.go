package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend down")

func failing() error { return errBackend }
func succeeding() error { return nil }

func TestTripsAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxRequests: 3, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		err := cb.Execute(failing)
		assert.ErrorIs(t, err, errBackend)
	}

	// The breaker is open now; calls are refused without running fn.
	ran := false
	err := cb.Execute(func() error { ran = true; return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker test is open")
	assert.False(t, ran)
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxRequests: 2, Timeout: time.Minute})

	require.Error(t, cb.Execute(failing))
	require.NoError(t, cb.Execute(succeeding))
	require.Error(t, cb.Execute(failing))

	// One failure after a success is below the threshold.
	assert.NoError(t, cb.Execute(succeeding))
}

func TestHalfOpenProbe(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxRequests: 1, Timeout: 10 * time.Millisecond})

	require.Error(t, cb.Execute(failing))
	require.Error(t, cb.Execute(succeeding), "open breaker must refuse immediately")

	time.Sleep(20 * time.Millisecond)

	// After the timeout a single probe goes through and closes the
	// breaker on success.
	assert.NoError(t, cb.Execute(succeeding))
	assert.NoError(t, cb.Execute(succeeding))
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxRequests: 5, Timeout: 10 * time.Millisecond})

	// Trip it.
	for i := 0; i < 5; i++ {
		require.Error(t, cb.Execute(failing))
	}

	time.Sleep(20 * time.Millisecond)

	// The probe fails, so the breaker snaps open again without waiting
	// for another run of consecutive failures.
	require.ErrorIs(t, cb.Execute(failing), errBackend)

	ran := false
	err := cb.Execute(func() error { ran = true; return nil })
	require.Error(t, err)
	assert.False(t, ran)
}

func TestStaleFailuresExpire(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxRequests: 2, Interval: 10 * time.Millisecond, Timeout: time.Minute})

	require.Error(t, cb.Execute(failing))
	time.Sleep(20 * time.Millisecond)

	// The earlier failure aged out, so this one starts a fresh count
	// and the breaker stays closed.
	require.Error(t, cb.Execute(failing))
	assert.NoError(t, cb.Execute(succeeding))
}
