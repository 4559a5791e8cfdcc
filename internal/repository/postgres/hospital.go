package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hospiq/scheduling-api/internal/model"
)

func (r *hospitalRepository) Create(ctx context.Context, hospital *model.Hospital) error {
	query := `
		INSERT INTO hospitals (
			id, name, timezone, address, phone, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	hospital.ID = uuid.New()
	hospital.CreatedAt = time.Now()
	hospital.UpdatedAt = time.Now()
	if hospital.Status == "" {
		hospital.Status = model.HospitalStatusActive
	}

	_, err := r.db.ExecContext(ctx, query,
		hospital.ID,
		hospital.Name,
		hospital.Timezone,
		hospital.Address,
		hospital.Phone,
		hospital.Status,
		hospital.CreatedAt,
		hospital.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create hospital: %w", err)
	}
	return nil
}

func (r *hospitalRepository) Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	query := `
		SELECT id, name, timezone, address, phone, status, created_at, updated_at
		FROM hospitals
		WHERE id = $1 AND deleted_at IS NULL
	`
	var hospital model.Hospital
	err := r.db.GetContext(ctx, &hospital, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}
	return &hospital, nil
}

func (r *hospitalRepository) Update(ctx context.Context, hospital *model.Hospital) error {
	query := `
		UPDATE hospitals
		SET name = $1, timezone = $2, address = $3, phone = $4, status = $5, updated_at = $6
		WHERE id = $7 AND deleted_at IS NULL
	`
	hospital.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		hospital.Name,
		hospital.Timezone,
		hospital.Address,
		hospital.Phone,
		hospital.Status,
		hospital.UpdatedAt,
		hospital.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update hospital: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("hospital not found")
	}
	return nil
}

func (r *hospitalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE hospitals
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete hospital: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("hospital not found")
	}
	return nil
}

func (r *hospitalRepository) List(ctx context.Context) ([]*model.Hospital, error) {
	query := `
		SELECT id, name, timezone, address, phone, status, created_at, updated_at
		FROM hospitals
		WHERE deleted_at IS NULL
		ORDER BY name ASC
	`
	var hospitals []*model.Hospital
	err := r.db.SelectContext(ctx, &hospitals, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	return hospitals, nil
}

func (r *hospitalRepository) CreateDepartment(ctx context.Context, department *model.Department) error {
	query := `
		INSERT INTO departments (
			id, hospital_id, name, description, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	department.ID = uuid.New()
	department.CreatedAt = time.Now()
	department.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		department.ID,
		department.HospitalID,
		department.Name,
		department.Description,
		department.CreatedAt,
		department.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create department: %w", err)
	}
	return nil
}

func (r *hospitalRepository) GetDepartment(ctx context.Context, id uuid.UUID) (*model.Department, error) {
	query := `
		SELECT id, hospital_id, name, description, created_at, updated_at
		FROM departments
		WHERE id = $1 AND deleted_at IS NULL
	`
	var department model.Department
	err := r.db.GetContext(ctx, &department, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return &department, nil
}

func (r *hospitalRepository) ListDepartments(ctx context.Context, hospitalID uuid.UUID) ([]*model.Department, error) {
	query := `
		SELECT id, hospital_id, name, description, created_at, updated_at
		FROM departments
		WHERE hospital_id = $1 AND deleted_at IS NULL
		ORDER BY name ASC
	`
	var departments []*model.Department
	err := r.db.SelectContext(ctx, &departments, query, hospitalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, nil
}

func (r *hospitalRepository) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE departments
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete department: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("department not found")
	}
	return nil
}
