package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hospiq/scheduling-api/internal/model"
)

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (
			id, hospital_id, department_id, full_name, specialty,
			email, phone, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	doctor.ID = uuid.New()
	doctor.CreatedAt = time.Now()
	doctor.UpdatedAt = time.Now()
	if doctor.Status == "" {
		doctor.Status = model.DoctorStatusActive
	}

	_, err := r.db.ExecContext(ctx, query,
		doctor.ID,
		doctor.HospitalID,
		doctor.DepartmentID,
		doctor.FullName,
		doctor.Specialty,
		doctor.Email,
		doctor.Phone,
		doctor.Status,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT id, hospital_id, department_id, full_name, specialty,
			   email, phone, status, created_at, updated_at
		FROM doctors
		WHERE id = $1 AND deleted_at IS NULL
	`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	query := `
		UPDATE doctors
		SET department_id = $1, full_name = $2, specialty = $3,
			email = $4, phone = $5, status = $6, updated_at = $7
		WHERE id = $8 AND deleted_at IS NULL
	`
	doctor.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		doctor.DepartmentID,
		doctor.FullName,
		doctor.Specialty,
		doctor.Email,
		doctor.Phone,
		doctor.Status,
		doctor.UpdatedAt,
		doctor.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update doctor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("doctor not found")
	}
	return nil
}

func (r *doctorRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.DoctorStatus) error {
	query := `
		UPDATE doctors
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update doctor status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("doctor not found")
	}
	return nil
}

func (r *doctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE doctors
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete doctor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("doctor not found")
	}
	return nil
}

func (r *doctorRepository) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error) {
	query := `
		SELECT id, hospital_id, department_id, full_name, specialty,
			   email, phone, status, created_at, updated_at
		FROM doctors
		WHERE deleted_at IS NULL
	`
	var args []interface{}

	if filters != nil {
		if filters.HospitalID != uuid.Nil {
			args = append(args, filters.HospitalID)
			query += fmt.Sprintf(" AND hospital_id = $%d", len(args))
		}
		if filters.DepartmentID != uuid.Nil {
			args = append(args, filters.DepartmentID)
			query += fmt.Sprintf(" AND department_id = $%d", len(args))
		}
		if filters.Specialty != "" {
			args = append(args, filters.Specialty)
			query += fmt.Sprintf(" AND specialty = $%d", len(args))
		}
		if filters.Status != "" {
			args = append(args, filters.Status)
			query += fmt.Sprintf(" AND status = $%d", len(args))
		}
		if filters.Name != "" {
			args = append(args, "%"+filters.Name+"%")
			query += fmt.Sprintf(" AND full_name ILIKE $%d", len(args))
		}
	}

	query += " ORDER BY full_name ASC"

	var doctors []*model.Doctor
	err := r.db.SelectContext(ctx, &doctors, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) FindActiveByName(ctx context.Context, hospitalID uuid.UUID, name string) ([]*model.Doctor, error) {
	query := `
		SELECT id, hospital_id, department_id, full_name, specialty,
			   email, phone, status, created_at, updated_at
		FROM doctors
		WHERE hospital_id = $1
		AND lower(full_name) = lower($2)
		AND status = $3
		AND deleted_at IS NULL
	`
	var doctors []*model.Doctor
	err := r.db.SelectContext(ctx, &doctors, query, hospitalID, name, model.DoctorStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to find doctors by name: %w", err)
	}
	return doctors, nil
}
