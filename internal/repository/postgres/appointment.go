package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hospiq/scheduling-api/internal/model"
)

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, hospital_id, doctor_id, patient_id,
			start_at, end_at, status, source, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()
	if appointment.Status == "" {
		appointment.Status = model.AppointmentStatusPending
	}
	if appointment.Source == "" {
		appointment.Source = model.AppointmentSourceManual
	}

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.HospitalID,
		appointment.DoctorID,
		appointment.PatientID,
		appointment.StartAt,
		appointment.EndAt,
		appointment.Status,
		appointment.Source,
		appointment.Notes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, hospital_id, doctor_id, patient_id,
			   start_at, end_at, status, source, notes, cancel_reason,
			   confirmed_at, cancelled_at, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET start_at = $1, end_at = $2, status = $3, notes = $4,
			cancel_reason = $5, confirmed_at = $6, cancelled_at = $7, updated_at = $8
		WHERE id = $9
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.StartAt,
		appointment.EndAt,
		appointment.Status,
		appointment.Notes,
		appointment.CancelReason,
		appointment.ConfirmedAt,
		appointment.CancelledAt,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, hospital_id, doctor_id, patient_id,
			   start_at, end_at, status, source, notes, cancel_reason,
			   confirmed_at, cancelled_at, created_at, updated_at
		FROM appointments
		WHERE 1=1
	`
	var args []interface{}

	if filters != nil {
		if filters.HospitalID != uuid.Nil {
			args = append(args, filters.HospitalID)
			query += fmt.Sprintf(" AND hospital_id = $%d", len(args))
		}
		if filters.DoctorID != uuid.Nil {
			args = append(args, filters.DoctorID)
			query += fmt.Sprintf(" AND doctor_id = $%d", len(args))
		}
		if filters.PatientID != uuid.Nil {
			args = append(args, filters.PatientID)
			query += fmt.Sprintf(" AND patient_id = $%d", len(args))
		}
		if filters.Status != "" {
			args = append(args, filters.Status)
			query += fmt.Sprintf(" AND status = $%d", len(args))
		}
		if !filters.From.IsZero() {
			args = append(args, filters.From)
			query += fmt.Sprintf(" AND start_at >= $%d", len(args))
		}
		if !filters.To.IsZero() {
			args = append(args, filters.To)
			query += fmt.Sprintf(" AND end_at <= $%d", len(args))
		}
	}

	query += " ORDER BY start_at ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) CountActiveForSlot(ctx context.Context, key model.SlotKey) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM appointments
		WHERE doctor_id = $1
		AND start_at = $2
		AND end_at = $3
		AND status NOT IN ('cancelled', 'completed', 'no_show')
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, key.DoctorID, key.StartAt, key.EndAt)
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments for slot: %w", err)
	}
	return count, nil
}

func (r *appointmentRepository) CountActiveForPatient(ctx context.Context, patientID uuid.UUID, key model.SlotKey) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM appointments
		WHERE patient_id = $1
		AND doctor_id = $2
		AND start_at = $3
		AND end_at = $4
		AND status NOT IN ('cancelled', 'completed', 'no_show')
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, patientID, key.DoctorID, key.StartAt, key.EndAt)
	if err != nil {
		return 0, fmt.Errorf("failed to count patient appointments for slot: %w", err)
	}
	return count, nil
}

func (r *appointmentRepository) ListForDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT id, hospital_id, doctor_id, patient_id,
			   start_at, end_at, status, source, notes, cancel_reason,
			   confirmed_at, cancelled_at, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1
		AND start_at >= $2
		AND end_at <= $3
		AND status NOT IN ('cancelled', 'completed', 'no_show')
		ORDER BY start_at ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}
	return appointments, nil
}
