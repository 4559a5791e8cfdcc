package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hospiq/scheduling-api/internal/model"
	"github.com/hospiq/scheduling-api/internal/repository"
)

type draftRepository struct {
	BaseRepository
}

func NewDraftRepository(base BaseRepository) repository.DraftRepository {
	return &draftRepository{base}
}

// Archive persists a terminal draft. The live state machine runs in
// memory; only finished drafts land here.
func (r *draftRepository) Archive(ctx context.Context, draft *model.Draft) error {
	query := `
		INSERT INTO booking_drafts (
			id, session_key, hospital_id, patient_id, department_id, doctor_id,
			slot_start_at, slot_end_at, notes, channel, state, appointment_id,
			created_at, updated_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE
		SET state = EXCLUDED.state,
			appointment_id = EXCLUDED.appointment_id,
			updated_at = EXCLUDED.updated_at
	`
	var slotStart, slotEnd *time.Time
	if draft.Slot != nil {
		slotStart = &draft.Slot.StartAt
		slotEnd = &draft.Slot.EndAt
	}

	_, err := r.db.ExecContext(ctx, query,
		draft.ID,
		draft.SessionKey,
		draft.HospitalID,
		draft.PatientID,
		draft.DepartmentID,
		draft.DoctorID,
		slotStart,
		slotEnd,
		draft.Notes,
		draft.Channel,
		draft.State,
		draft.AppointmentID,
		draft.CreatedAt,
		draft.UpdatedAt,
		draft.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to archive draft: %w", err)
	}
	return nil
}

func (r *draftRepository) ListArchived(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*model.Draft, error) {
	query := `
		SELECT id, session_key, hospital_id, patient_id, department_id, doctor_id,
			   notes, channel, state, appointment_id, created_at, updated_at, expires_at
		FROM booking_drafts
		WHERE hospital_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`
	var drafts []*model.Draft
	err := r.db.SelectContext(ctx, &drafts, query, hospitalID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived drafts: %w", err)
	}
	return drafts, nil
}
