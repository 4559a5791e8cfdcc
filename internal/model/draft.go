package model

import (
	"time"

	"github.com/google/uuid"
)

type DraftState string

const (
	DraftStateCollecting DraftState = "collecting"
	DraftStateReady      DraftState = "ready"
	DraftStateConfirmed  DraftState = "confirmed"
	DraftStateAbandoned  DraftState = "abandoned"
	DraftStateExpired    DraftState = "expired"
)

func (s DraftState) Terminal() bool {
	return s == DraftStateConfirmed || s == DraftStateAbandoned || s == DraftStateExpired
}

type DraftChannel string

const (
	DraftChannelWeb       DraftChannel = "web"
	DraftChannelWhatsApp  DraftChannel = "whatsapp"
	DraftChannelSMS       DraftChannel = "sms"
	DraftChannelMessenger DraftChannel = "messenger"
	DraftChannelKiosk     DraftChannel = "kiosk"
)

// Draft is an in-flight booking conversation. SessionKey is the caller's
// correlation key; one non-terminal draft exists per key at a time.
type Draft struct {
	ID            uuid.UUID    `db:"id" json:"id"`
	SessionKey    string       `db:"session_key" json:"session_key"`
	HospitalID    uuid.UUID    `db:"hospital_id" json:"hospital_id"`
	PatientID     *uuid.UUID   `db:"patient_id" json:"patient_id,omitempty"`
	DepartmentID  *uuid.UUID   `db:"department_id" json:"department_id,omitempty"`
	DoctorID      *uuid.UUID   `db:"doctor_id" json:"doctor_id,omitempty"`
	Slot          *TimeSlot    `db:"-" json:"slot,omitempty"`
	Notes         string       `db:"notes" json:"notes,omitempty"`
	Channel       DraftChannel `db:"channel" json:"channel"`
	State         DraftState   `db:"state" json:"state"`
	AppointmentID *uuid.UUID   `db:"appointment_id" json:"appointment_id,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
	ExpiresAt     time.Time    `db:"expires_at" json:"expires_at"`
}

// Complete reports whether every slot needed to attempt a confirm is
// present. A department without a chosen doctor counts: the confirm
// itself decides whether the doctor reference is unambiguous.
func (d *Draft) Complete() bool {
	return d.PatientID != nil && d.Slot != nil && (d.DoctorID != nil || d.DepartmentID != nil)
}

func (d *Draft) Expired(now time.Time) bool {
	return now.After(d.ExpiresAt)
}

type OpenDraftRequest struct {
	SessionKey string       `json:"session_key" binding:"required"`
	HospitalID string       `json:"hospital_id" binding:"required,uuid"`
	Channel    DraftChannel `json:"channel" binding:"omitempty,oneof=web whatsapp sms messenger kiosk"`
}

type UpdateDraftSlotRequest struct {
	StartAt time.Time `json:"start_at" binding:"required"`
	EndAt   time.Time `json:"end_at" binding:"required,gtfield=StartAt"`
	// DoctorID may be omitted when the conversation has only narrowed
	// down to a department so far.
	DoctorID *string `json:"doctor_id" binding:"omitempty,uuid"`
	Notes    string  `json:"notes" binding:"max=1000"`
}

type SetDraftPatientRequest struct {
	PatientID string `json:"patient_id" binding:"required,uuid"`
}

type SetDraftDepartmentRequest struct {
	DepartmentID string `json:"department_id" binding:"required,uuid"`
}
