package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hospiq/scheduling-api/internal/model"
	"github.com/hospiq/scheduling-api/internal/repository"
	"github.com/hospiq/scheduling-api/pkg/logger"
	"github.com/hospiq/scheduling-api/pkg/messaging"
	"github.com/hospiq/scheduling-api/pkg/metrics"
)

const (
	maxRetries       = 3
	retryDelay       = 5 * time.Second
	eventExpiry      = 24 * time.Hour
	defaultBatchSize = 100
)

// EventService writes domain events to the outbox and, when a broker is
// attached, pushes them out eagerly. The outbox processor remains the
// at-least-once safety net either way.
type EventService struct {
	outboxRepo repository.OutboxRepository
	broker     messaging.Broker
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

func NewEventService(outboxRepo repository.OutboxRepository, broker messaging.Broker, logger *logger.Logger, m *metrics.Metrics) *EventService {
	return &EventService{
		outboxRepo: outboxRepo,
		broker:     broker,
		logger:     logger,
		metrics:    m,
	}
}

// Emit records the event. It never fails the caller's operation for
// broker trouble; only an outbox write error is returned.
func (s *EventService) Emit(ctx context.Context, eventType string, aggregateID uuid.UUID, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := &model.OutboxEvent{
		AggregateID: aggregateID,
		EventType:   eventType,
		Payload:     payloadJSON,
	}

	if err := s.outboxRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}

	if s.broker != nil {
		go func() {
			if err := s.processEvent(context.WithoutCancel(ctx), event); err != nil {
				s.logger.Warn("eager event publish failed, leaving for processor",
					"event_id", event.ID.String(), "event_type", eventType)
			}
		}()
	}

	return nil
}

// ProcessPendingEvents relays up to limit pending events; limit <= 0
// uses the default batch size.
func (s *EventService) ProcessPendingEvents(ctx context.Context, limit int) error {
	if limit <= 0 {
		limit = defaultBatchSize
	}

	events, err := s.outboxRepo.GetPendingEventsWithLock(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to get pending events: %w", err)
	}

	for _, event := range events {
		if err := s.processEvent(ctx, event); err != nil {
			s.handleProcessingError(ctx, event, err)
		}
	}

	return nil
}

func (s *EventService) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	tx, err := s.outboxRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.broker.Publish(ctx, event.EventType, event.Payload); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	if err := s.outboxRepo.UpdateStatusTx(ctx, tx, event.ID, string(model.OutboxStatusProcessed), nil, nil); err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if s.metrics != nil {
		s.metrics.OutboxEventsProcessed.Inc()
	}
	return nil
}

func (s *EventService) handleProcessingError(ctx context.Context, event *model.OutboxEvent, err error) {
	event.RetryCount++
	errMsg := err.Error()

	if event.RetryCount >= maxRetries {
		if s.metrics != nil {
			s.metrics.OutboxEventsFailed.Inc()
		}
		event.ErrorMessage = &errMsg
		if moveErr := s.outboxRepo.MoveToDeadLetter(ctx, nil, event); moveErr != nil {
			s.logger.Error(moveErr, "failed to move event to dead letter",
				"event_id", event.ID.String())
			return
		}
		if updateErr := s.outboxRepo.UpdateStatusTx(ctx, nil, event.ID, string(model.OutboxStatusFailed), &errMsg, nil); updateErr != nil {
			s.logger.Error(updateErr, "failed to mark event failed",
				"event_id", event.ID.String())
		}
		return
	}

	if s.metrics != nil {
		s.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
	}
	retryAt := time.Now().Add(retryDelay * time.Duration(event.RetryCount))
	if updateErr := s.outboxRepo.UpdateStatusTx(ctx, nil, event.ID, string(model.OutboxStatusRetry), &errMsg, &retryAt); updateErr != nil {
		s.logger.Error(updateErr, "failed to schedule event retry",
			"event_id", event.ID.String())
	}
}

func (s *EventService) CleanupProcessedEvents(ctx context.Context) error {
	cutoff := time.Now().Add(-eventExpiry)
	count, err := s.outboxRepo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup events: %w", err)
	}

	if count > 0 {
		s.logger.Debug("cleaned up processed outbox events", "count", count)
	}
	return nil
}
