package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hospiq/scheduling-api/internal/model"
)

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, hospital_id, full_name, email, phone, gender,
			date_of_birth, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	patient.ID = uuid.New()
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()
	if patient.Gender == "" {
		patient.Gender = model.GenderUnknown
	}

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.HospitalID,
		patient.FullName,
		patient.Email,
		patient.Phone,
		patient.Gender,
		patient.DateOfBirth,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT id, hospital_id, full_name, email, phone, gender,
			   date_of_birth, created_at, updated_at
		FROM patients
		WHERE id = $1 AND deleted_at IS NULL
	`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET full_name = $1, email = $2, phone = $3, gender = $4,
			date_of_birth = $5, updated_at = $6
		WHERE id = $7 AND deleted_at IS NULL
	`
	patient.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		patient.FullName,
		patient.Email,
		patient.Phone,
		patient.Gender,
		patient.DateOfBirth,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("patient not found")
	}
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE patients
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("patient not found")
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	query := `
		SELECT id, hospital_id, full_name, email, phone, gender,
			   date_of_birth, created_at, updated_at
		FROM patients
		WHERE deleted_at IS NULL
	`
	var args []interface{}

	if filters != nil {
		if filters.HospitalID != uuid.Nil {
			args = append(args, filters.HospitalID)
			query += fmt.Sprintf(" AND hospital_id = $%d", len(args))
		}
		if filters.Name != "" {
			args = append(args, "%"+filters.Name+"%")
			query += fmt.Sprintf(" AND full_name ILIKE $%d", len(args))
		}
		if filters.Phone != "" {
			args = append(args, filters.Phone)
			query += fmt.Sprintf(" AND phone = $%d", len(args))
		}
	}

	query += " ORDER BY full_name ASC"

	var patients []*model.Patient
	err := r.db.SelectContext(ctx, &patients, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
