package worker

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hospiq/scheduling-api/internal/model"
	"github.com/hospiq/scheduling-api/internal/repository"
	"github.com/hospiq/scheduling-api/internal/service/event"
	"github.com/hospiq/scheduling-api/pkg/logger"
)

func quietLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

// pollingOutbox records how the processor drives the outbox; it never
// hands back events, so the broker is never reached.
type pollingOutbox struct {
	repository.OutboxRepository
	mu       sync.Mutex
	limits   []int
	cleanups []time.Time
}

func (o *pollingOutbox) GetPendingEventsWithLock(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.limits = append(o.limits, limit)
	return nil, nil
}

func (o *pollingOutbox) DeleteProcessedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cleanups = append(o.cleanups, cutoff)
	return 0, nil
}

func (o *pollingOutbox) polls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.limits)
}

func (o *pollingOutbox) lastLimit() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.limits) == 0 {
		return 0
	}
	return o.limits[len(o.limits)-1]
}

func (o *pollingOutbox) cleanupCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.cleanups)
}

func TestNewOutboxProcessorDefaults(t *testing.T) {
	p := NewOutboxProcessor(nil, OutboxProcessorConfig{}, quietLogger(), nil)

	require.Equal(t, 100, p.config.BatchSize)
	require.Equal(t, 5*time.Second, p.config.PollInterval)
	require.Equal(t, time.Hour, p.config.CleanupInterval)
}

func TestOutboxProcessorPollsWithConfiguredBatch(t *testing.T) {
	outbox := &pollingOutbox{}
	events := event.NewEventService(outbox, nil, quietLogger(), nil)
	p := NewOutboxProcessor(events, OutboxProcessorConfig{
		BatchSize:       25,
		PollInterval:    10 * time.Millisecond,
		CleanupInterval: time.Hour,
	}, quietLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return outbox.polls() >= 2
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, 25, outbox.lastLimit())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processor did not stop after cancel")
	}
}

func TestOutboxProcessorRunsCleanup(t *testing.T) {
	outbox := &pollingOutbox{}
	events := event.NewEventService(outbox, nil, quietLogger(), nil)
	p := NewOutboxProcessor(events, OutboxProcessorConfig{
		BatchSize:       10,
		PollInterval:    time.Hour,
		CleanupInterval: 10 * time.Millisecond,
	}, quietLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Start(ctx)

	require.Eventually(t, func() bool {
		return outbox.cleanupCount() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	outbox.mu.Lock()
	cutoff := outbox.cleanups[0]
	outbox.mu.Unlock()
	require.WithinDuration(t, time.Now().Add(-24*time.Hour), cutoff, 5*time.Second)
}
