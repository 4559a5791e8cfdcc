package worker

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/hospiq/scheduling-api/internal/email"
	"github.com/hospiq/scheduling-api/internal/repository"
	"github.com/hospiq/scheduling-api/pkg/event"
	"github.com/hospiq/scheduling-api/pkg/logger"
	"github.com/hospiq/scheduling-api/pkg/messaging"
)

// Notifier consumes appointment events off the broker and mails the
// patient. Failures are logged and dropped; notification is best
// effort and must never block the booking pipeline.
type Notifier struct {
	broker   messaging.MessageBroker
	mailer   email.Service
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	logger   *logger.Logger
}

func NewNotifier(
	broker messaging.MessageBroker,
	mailer email.Service,
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	logger *logger.Logger,
) *Notifier {
	return &Notifier{
		broker:   broker,
		mailer:   mailer,
		patients: patients,
		doctors:  doctors,
		logger:   logger,
	}
}

// Start subscribes to the appointment topics and blocks until the
// context is cancelled.
func (n *Notifier) Start(ctx context.Context) error {
	topics := []string{
		event.TopicAppointmentBooked,
		event.TopicAppointmentCancelled,
		event.TopicAppointmentRescheduled,
	}

	for _, topic := range topics {
		t := topic
		err := n.broker.Subscribe(ctx, t, func(payload []byte) error {
			if err := n.handle(ctx, t, payload); err != nil {
				n.logger.Error(err, "failed to handle event", "topic", t)
				return err
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	n.logger.Info("notifier started", "topics", topics)
	<-ctx.Done()
	n.logger.Info("notifier shutting down")
	return nil
}

func (n *Notifier) handle(ctx context.Context, topic string, payload []byte) error {
	var ev event.AppointmentEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return err
	}

	patient, err := n.patients.Get(ctx, ev.PatientID)
	if err != nil {
		return err
	}
	if patient.Email == "" {
		n.logger.Debug("patient has no email, skipping notification",
			"patient_id", ev.PatientID.String(), "topic", topic)
		return nil
	}

	doctorName := n.doctorName(ctx, ev.DoctorID)

	switch topic {
	case event.TopicAppointmentBooked:
		return n.mailer.SendBookingConfirmation(ctx, patient.Email, patient.FullName, doctorName, ev.StartAt)
	case event.TopicAppointmentCancelled:
		return n.mailer.SendCancellation(ctx, patient.Email, patient.FullName, doctorName, ev.StartAt, ev.Reason)
	case event.TopicAppointmentRescheduled:
		oldStart := ev.StartAt
		if ev.PreviousStart != nil {
			oldStart = *ev.PreviousStart
		}
		return n.mailer.SendReschedule(ctx, patient.Email, patient.FullName, doctorName, oldStart, ev.StartAt)
	}
	return nil
}

func (n *Notifier) doctorName(ctx context.Context, doctorID uuid.UUID) string {
	doctor, err := n.doctors.Get(ctx, doctorID)
	if err != nil {
		n.logger.Warn("failed to resolve doctor for notification",
			"doctor_id", doctorID.String())
		return "your doctor"
	}
	return doctor.FullName
}
