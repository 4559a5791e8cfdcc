package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/hospiq/scheduling-api/pkg/errors"
	"github.com/hospiq/scheduling-api/pkg/metrics"
)

// DefaultGuardWait bounds how long a booking waits for a contended slot.
const DefaultGuardWait = 5 * time.Second

// SlotGuard serializes bookings per (doctor, start_at). Acquire blocks
// until the slot is free, the bounded wait elapses, or the context is
// cancelled. Lock entries are removed once the last interested caller
// lets go, so the key space does not grow with traffic.
type SlotGuard struct {
	mu      sync.Mutex
	locks   map[string]*slotLock
	wait    time.Duration
	metrics *metrics.Metrics
}

type slotLock struct {
	token chan struct{}
	refs  int
}

func NewSlotGuard(wait time.Duration, m *metrics.Metrics) *SlotGuard {
	if wait <= 0 {
		wait = DefaultGuardWait
	}
	return &SlotGuard{
		locks:   make(map[string]*slotLock),
		wait:    wait,
		metrics: m,
	}
}

// Acquire takes the slot lock and returns its release function. Release
// is idempotent.
func (g *SlotGuard) Acquire(ctx context.Context, doctorID uuid.UUID, startAt time.Time) (func(), error) {
	key := fmt.Sprintf("%s/%d", doctorID, startAt.UTC().Unix())

	g.mu.Lock()
	l, ok := g.locks[key]
	if !ok {
		l = &slotLock{token: make(chan struct{}, 1)}
		g.locks[key] = l
	}
	l.refs++
	g.mu.Unlock()

	started := time.Now()
	timer := time.NewTimer(g.wait)
	defer timer.Stop()

	select {
	case l.token <- struct{}{}:
		if g.metrics != nil {
			g.metrics.GuardWaitDuration.Observe(time.Since(started).Seconds())
		}
		var once sync.Once
		release := func() {
			once.Do(func() {
				<-l.token
				g.unref(key, l)
			})
		}
		return release, nil

	case <-timer.C:
		g.unref(key, l)
		if g.metrics != nil {
			g.metrics.GuardTimeouts.Inc()
		}
		return nil, apperrors.NewBookingTimeout(
			fmt.Sprintf("timed out after %s waiting for slot %s", g.wait, key))

	case <-ctx.Done():
		g.unref(key, l)
		return nil, fmt.Errorf("slot guard wait aborted: %w", ctx.Err())
	}
}

func (g *SlotGuard) unref(key string, l *slotLock) {
	g.mu.Lock()
	defer g.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(g.locks, key)
	}
}
