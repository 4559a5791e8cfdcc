package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Audit actions emitted by the scheduler.
const (
	AuditActionBooked      = "appointment.booked"
	AuditActionConfirmed   = "appointment.confirmed"
	AuditActionCancelled   = "appointment.cancelled"
	AuditActionRescheduled = "appointment.rescheduled"
	AuditActionCompleted   = "appointment.completed"
	AuditActionNoShow      = "appointment.no_show"
	AuditActionRejected    = "appointment.rejected"
)

// Entity types recorded on audit events.
const (
	AuditEntityAppointment = "appointment"
	AuditEntityDoctor      = "doctor"
	AuditEntityPatient     = "patient"
	AuditEntityRule        = "availability_rule"
	AuditEntityDraft       = "draft"
)

type AuditEvent struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	HospitalID uuid.UUID       `json:"hospital_id" db:"hospital_id"`
	Actor      string          `json:"actor" db:"actor"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id" db:"entity_id"`
	Context    json.RawMessage `json:"context" db:"context"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

type AuditFilters struct {
	HospitalID uuid.UUID
	Action     string
	EntityType string
	EntityID   uuid.UUID
	From       time.Time
	To         time.Time
}
