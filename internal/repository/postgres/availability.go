package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hospiq/scheduling-api/internal/model"
)

func (r *availabilityRepository) Create(ctx context.Context, rule *model.AvailabilityRule) error {
	query := `
		INSERT INTO availability_rules (
			id, doctor_id, weekday, start_time, end_time, capacity,
			slot_duration_minutes, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	rule.ID = uuid.New()
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		rule.ID,
		rule.DoctorID,
		rule.Weekday,
		rule.StartTime,
		rule.EndTime,
		rule.Capacity,
		rule.SlotDurationMinutes,
		rule.IsActive,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create availability rule: %w", err)
	}
	return nil
}

func (r *availabilityRepository) Get(ctx context.Context, id uuid.UUID) (*model.AvailabilityRule, error) {
	query := `
		SELECT id, doctor_id, weekday, start_time, end_time, capacity,
			   slot_duration_minutes, is_active, created_at, updated_at
		FROM availability_rules
		WHERE id = $1 AND deleted_at IS NULL
	`
	var rule model.AvailabilityRule
	err := r.db.GetContext(ctx, &rule, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get availability rule: %w", err)
	}
	return &rule, nil
}

func (r *availabilityRepository) Update(ctx context.Context, rule *model.AvailabilityRule) error {
	query := `
		UPDATE availability_rules
		SET capacity = $1, slot_duration_minutes = $2, is_active = $3, updated_at = $4
		WHERE id = $5 AND deleted_at IS NULL
	`
	rule.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		rule.Capacity,
		rule.SlotDurationMinutes,
		rule.IsActive,
		rule.UpdatedAt,
		rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update availability rule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("availability rule not found")
	}
	return nil
}

func (r *availabilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE availability_rules
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete availability rule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("availability rule not found")
	}
	return nil
}

func (r *availabilityRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AvailabilityRule, error) {
	query := `
		SELECT id, doctor_id, weekday, start_time, end_time, capacity,
			   slot_duration_minutes, is_active, created_at, updated_at
		FROM availability_rules
		WHERE doctor_id = $1 AND deleted_at IS NULL
		ORDER BY weekday ASC, start_time ASC
	`
	var rules []*model.AvailabilityRule
	err := r.db.SelectContext(ctx, &rules, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability rules: %w", err)
	}
	return rules, nil
}

func (r *availabilityRepository) ListActiveByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AvailabilityRule, error) {
	query := `
		SELECT id, doctor_id, weekday, start_time, end_time, capacity,
			   slot_duration_minutes, is_active, created_at, updated_at
		FROM availability_rules
		WHERE doctor_id = $1 AND is_active = true AND deleted_at IS NULL
		ORDER BY weekday ASC, start_time ASC
	`
	var rules []*model.AvailabilityRule
	err := r.db.SelectContext(ctx, &rules, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active availability rules: %w", err)
	}
	return rules, nil
}

func (r *availabilityRepository) FindByWindow(ctx context.Context, doctorID uuid.UUID, weekday model.Weekday, startTime, endTime string) (*model.AvailabilityRule, error) {
	query := `
		SELECT id, doctor_id, weekday, start_time, end_time, capacity,
			   slot_duration_minutes, is_active, created_at, updated_at
		FROM availability_rules
		WHERE doctor_id = $1 AND weekday = $2 AND start_time = $3 AND end_time = $4
		AND deleted_at IS NULL
	`
	var rule model.AvailabilityRule
	err := r.db.GetContext(ctx, &rule, query, doctorID, weekday, startTime, endTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find availability rule: %w", err)
	}
	return &rule, nil
}
