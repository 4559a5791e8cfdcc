package worker

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hospiq/scheduling-api/internal/service/event"
	"github.com/hospiq/scheduling-api/pkg/logger"
	"github.com/hospiq/scheduling-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize       int
	PollInterval    time.Duration
	CleanupInterval time.Duration
}

// OutboxProcessor drains the outbox on a schedule. Retry backoff and
// dead-lettering live in the event service; this loop only drives it.
type OutboxProcessor struct {
	events  *event.EventService
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOutboxProcessor(
	events *event.EventService,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Hour
	}

	return &OutboxProcessor{
		events:  events,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	cleanup := time.NewTicker(p.config.CleanupInterval)
	defer cleanup.Stop()

	p.logger.Info("starting outbox processor",
		"poll_interval", p.config.PollInterval.String(),
		"batch_size", p.config.BatchSize)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down outbox processor")
			return
		case <-ticker.C:
			p.sweep(ctx)
		case <-cleanup.C:
			if err := p.events.CleanupProcessedEvents(ctx); err != nil {
				p.logger.Error(err, "failed to clean up processed events")
			}
		}
	}
}

func (p *OutboxProcessor) sweep(ctx context.Context) {
	if p.metrics != nil {
		timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
		defer timer.ObserveDuration()
	}

	if err := p.events.ProcessPendingEvents(ctx, p.config.BatchSize); err != nil {
		p.logger.Error(err, "failed to process pending events")
	}
}
