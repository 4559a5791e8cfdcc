package event

import (
	"time"

	"github.com/google/uuid"
)

// Topics published through the outbox and onto the broker. Consumers
// subscribe by topic name; the outbox processor republishes failed
// eager publishes under the same names.
const (
	TopicAppointmentBooked      = "appointment.booked"
	TopicAppointmentConfirmed   = "appointment.confirmed"
	TopicAppointmentCancelled   = "appointment.cancelled"
	TopicAppointmentRescheduled = "appointment.rescheduled"
	TopicAppointmentCompleted   = "appointment.completed"
	TopicAppointmentNoShow      = "appointment.no_show"
	TopicAppointmentRejected    = "appointment.rejected"
)

// AppointmentEvent is the payload for every appointment.* topic that
// concerns an existing appointment row.
type AppointmentEvent struct {
	AppointmentID uuid.UUID  `json:"appointment_id"`
	HospitalID    uuid.UUID  `json:"hospital_id"`
	DoctorID      uuid.UUID  `json:"doctor_id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	StartAt       time.Time  `json:"start_at"`
	EndAt         time.Time  `json:"end_at"`
	Status        string     `json:"status"`
	Source        string     `json:"source"`
	Reason        string     `json:"reason,omitempty"`
	PreviousStart *time.Time `json:"previous_start_at,omitempty"`
	PreviousEnd   *time.Time `json:"previous_end_at,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// BookingRejectedEvent is the payload for appointment.rejected; no
// appointment row exists for a rejected attempt.
type BookingRejectedEvent struct {
	HospitalID uuid.UUID `json:"hospital_id"`
	PatientID  uuid.UUID `json:"patient_id"`
	DoctorRef  string    `json:"doctor_ref"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
