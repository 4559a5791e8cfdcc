package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hospiq/scheduling-api/internal/model"
	"github.com/hospiq/scheduling-api/internal/repository"
)

type Service struct {
	repo repository.AuditRepository
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo}
}

type LogOptions struct {
	Actor   string
	Context interface{}
}

// Log creates an audit event row.
func (s *Service) Log(ctx context.Context, hospitalID uuid.UUID, action, entityType string, entityID uuid.UUID, opts *LogOptions) error {
	var contextJSON json.RawMessage
	actor := "system"

	if opts != nil {
		if opts.Actor != "" {
			actor = opts.Actor
		}
		if opts.Context != nil {
			var err error
			contextJSON, err = json.Marshal(opts.Context)
			if err != nil {
				return fmt.Errorf("failed to marshal audit context: %w", err)
			}
		}
	}

	event := &model.AuditEvent{
		ID:         uuid.New(),
		HospitalID: hospitalID,
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Context:    contextJSON,
		CreatedAt:  time.Now(),
	}

	return s.repo.Create(ctx, event)
}

func (s *Service) List(ctx context.Context, filters *model.AuditFilters, pagination model.Pagination) ([]*model.AuditEvent, int64, error) {
	return s.repo.List(ctx, filters, pagination)
}

func (s *Service) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.DeleteBefore(ctx, before)
}
