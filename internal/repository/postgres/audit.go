package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hospiq/scheduling-api/internal/model"
	"github.com/hospiq/scheduling-api/internal/repository"
)

type auditRepository struct {
	BaseRepository
}

func NewAuditRepository(base BaseRepository) repository.AuditRepository {
	return &auditRepository{base}
}

func (r *auditRepository) Create(ctx context.Context, event *model.AuditEvent) error {
	query := `
		INSERT INTO audit_events (
			id, hospital_id, actor, action, entity_type, entity_id,
			context, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.HospitalID,
		event.Actor,
		event.Action,
		event.EntityType,
		event.EntityID,
		event.Context,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit event: %w", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, filters *model.AuditFilters, pagination model.Pagination) ([]*model.AuditEvent, int64, error) {
	baseQuery := "FROM audit_events WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filters != nil {
		if filters.HospitalID != uuid.Nil {
			args = append(args, filters.HospitalID)
			conditions = append(conditions, fmt.Sprintf("hospital_id = $%d", len(args)))
		}
		if filters.Action != "" {
			args = append(args, filters.Action)
			conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)))
		}
		if filters.EntityType != "" {
			args = append(args, filters.EntityType)
			conditions = append(conditions, fmt.Sprintf("entity_type = $%d", len(args)))
		}
		if filters.EntityID != uuid.Nil {
			args = append(args, filters.EntityID)
			conditions = append(conditions, fmt.Sprintf("entity_id = $%d", len(args)))
		}
		if !filters.From.IsZero() {
			args = append(args, filters.From)
			conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
		}
		if !filters.To.IsZero() {
			args = append(args, filters.To)
			conditions = append(conditions, fmt.Sprintf("created_at < $%d", len(args)))
		}
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	var total int64
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit events: %w", err)
	}

	args = append(args, pagination.Limit())
	limitClause := fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, pagination.Offset())
	limitClause += fmt.Sprintf(" OFFSET $%d", len(args))

	selectQuery := `
		SELECT id, hospital_id, actor, action, entity_type, entity_id,
			   context, created_at ` + baseQuery + limitClause

	var events []*model.AuditEvent
	if err := r.db.SelectContext(ctx, &events, selectQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list audit events: %w", err)
	}

	return events, total, nil
}

func (r *auditRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM audit_events
		WHERE created_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit events: %w", err)
	}
	return result.RowsAffected()
}
