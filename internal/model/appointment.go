package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// Terminal reports whether the status no longer occupies slot capacity.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCancelled || s == AppointmentStatusCompleted || s == AppointmentStatusNoShow
}

type AppointmentSource string

const (
	AppointmentSourceChatbot    AppointmentSource = "chatbot"
	AppointmentSourceManual     AppointmentSource = "manual"
	AppointmentSourceCallCenter AppointmentSource = "call_center"
	AppointmentSourcePortal     AppointmentSource = "portal"
)

type Appointment struct {
	Base
	HospitalID   uuid.UUID         `db:"hospital_id" json:"hospital_id"`
	DoctorID     uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	PatientID    uuid.UUID         `db:"patient_id" json:"patient_id"`
	StartAt      time.Time         `db:"start_at" json:"start_at"`
	EndAt        time.Time         `db:"end_at" json:"end_at"`
	Status       AppointmentStatus `db:"status" json:"status"`
	Source       AppointmentSource `db:"source" json:"source"`
	Notes        string            `db:"notes" json:"notes,omitempty"`
	CancelReason *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
	ConfirmedAt  *time.Time        `db:"confirmed_at" json:"confirmed_at,omitempty"`
	CancelledAt  *time.Time        `db:"cancelled_at" json:"cancelled_at,omitempty"`
}

// Slot returns the slot occupied by the appointment.
func (a *Appointment) Slot() SlotKey {
	return SlotKey{DoctorID: a.DoctorID, StartAt: a.StartAt, EndAt: a.EndAt}
}

// BookAppointmentRequest is the scheduler's booking input. DoctorRef is
// either a doctor UUID or an exact full name to be resolved within the
// hospital.
type BookAppointmentRequest struct {
	HospitalID uuid.UUID         `json:"hospital_id" validate:"required"`
	PatientID  uuid.UUID         `json:"patient_id" validate:"required"`
	DoctorRef  string            `json:"doctor_ref" validate:"required"`
	StartAt    time.Time         `json:"start_at" validate:"required"`
	EndAt      time.Time         `json:"end_at" validate:"required,gtfield=StartAt"`
	Source     AppointmentSource `json:"source" validate:"omitempty,oneof=chatbot manual call_center portal"`
	Notes      string            `json:"notes" validate:"max=1000"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type RescheduleAppointmentRequest struct {
	StartAt time.Time `json:"start_at" binding:"required"`
	EndAt   time.Time `json:"end_at" binding:"required,gtfield=StartAt"`
}

type AppointmentFilters struct {
	HospitalID uuid.UUID
	DoctorID   uuid.UUID
	PatientID  uuid.UUID
	Status     AppointmentStatus
	From       time.Time
	To         time.Time
}
