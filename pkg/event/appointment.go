package event

import (
	"time"

	"github.com/hospiq/scheduling-api/internal/model"
)

// NewAppointmentEvent snapshots an appointment into its event payload.
func NewAppointmentEvent(appt *model.Appointment) AppointmentEvent {
	return AppointmentEvent{
		AppointmentID: appt.ID,
		HospitalID:    appt.HospitalID,
		DoctorID:      appt.DoctorID,
		PatientID:     appt.PatientID,
		StartAt:       appt.StartAt,
		EndAt:         appt.EndAt,
		Status:        string(appt.Status),
		Source:        string(appt.Source),
		OccurredAt:    time.Now().UTC(),
	}
}
