package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hospiq/scheduling-api/internal/model"
	"github.com/hospiq/scheduling-api/internal/repository"
	"github.com/hospiq/scheduling-api/internal/service/audit"
	"github.com/hospiq/scheduling-api/internal/service/capacity"
	apperrors "github.com/hospiq/scheduling-api/pkg/errors"
	"github.com/hospiq/scheduling-api/pkg/event"
	"github.com/hospiq/scheduling-api/pkg/logger"
	"github.com/hospiq/scheduling-api/pkg/metrics"
	"github.com/hospiq/scheduling-api/pkg/validator"
)

// SlotProber reports how many seats a doctor's published schedule
// offers for an exact slot; zero means the doctor does not offer it.
// The availability service implements it.
type SlotProber interface {
	HasSlot(ctx context.Context, doctorID uuid.UUID, startAt, endAt time.Time) (int, error)
}

// Emitter records a domain event for delivery. The outbox-backed event
// service implements it.
type Emitter interface {
	Emit(ctx context.Context, eventType string, aggregateID uuid.UUID, payload interface{}) error
}

// Service orchestrates the appointment lifecycle. Booking resolves the
// doctor reference, verifies the slot against the availability index,
// serializes on the slot guard, reserves a seat in the capacity ledger
// and only then persists the row, so a slot can never oversell.
type Service struct {
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	availability SlotProber
	ledger       capacity.Ledger
	guard        *SlotGuard
	events       Emitter
	audit        *audit.AuditLogger
	validate     validator.Validator
	logger       *logger.Logger
	metrics      *metrics.Metrics
}

func NewService(
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	appointments repository.AppointmentRepository,
	availability SlotProber,
	ledger capacity.Ledger,
	guard *SlotGuard,
	events Emitter,
	auditLog *audit.AuditLogger,
	validate validator.Validator,
	l *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		doctors:      doctors,
		patients:     patients,
		appointments: appointments,
		availability: availability,
		ledger:       ledger,
		guard:        guard,
		events:       events,
		audit:        auditLog,
		validate:     validate,
		logger:       l,
		metrics:      m,
	}
}

// Book books an appointment for the requested slot. DoctorRef is either
// a doctor UUID or an exact full name resolved within the hospital.
func (s *Service) Book(ctx context.Context, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	started := time.Now()

	appt, err := s.book(ctx, req)
	if err != nil {
		s.observeBooking(started, outcomeOf(err))
		return nil, err
	}
	s.observeBooking(started, "booked")
	return appt, nil
}

func (s *Service) book(ctx context.Context, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	if s.validate != nil {
		if err := s.validate.Validate(req); err != nil {
			return nil, apperrors.NewValidation("invalid booking request", err)
		}
	}
	if !req.EndAt.After(req.StartAt) {
		return nil, apperrors.NewInvalidRange("end_at must be after start_at")
	}

	doctor, err := s.resolveDoctor(ctx, req.HospitalID, req.DoctorRef)
	if err != nil {
		s.recordRejection(ctx, req, err)
		return nil, err
	}

	if _, err := s.patients.Get(ctx, req.PatientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("patient", err)
		}
		return nil, apperrors.NewInternal(err)
	}

	appt, err := s.placeAppointment(ctx, doctor, req)
	if err != nil {
		s.recordRejection(ctx, req, err)
		return nil, err
	}

	ev := event.NewAppointmentEvent(appt)
	s.emit(ctx, event.TopicAppointmentBooked, appt.ID, ev)
	s.audit.Log(ctx, appt.HospitalID, model.AuditActionBooked, model.AuditEntityAppointment, appt.ID, &audit.LogOptions{Context: ev})
	return appt, nil
}

// resolveDoctor turns a doctor reference into a single doctor of the
// hospital. A name that matches several active doctors is ambiguous;
// the caller must narrow it down.
func (s *Service) resolveDoctor(ctx context.Context, hospitalID uuid.UUID, ref string) (*model.Doctor, error) {
	if id, perr := uuid.Parse(ref); perr == nil {
		doctor, err := s.doctors.Get(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperrors.NewNotFound("doctor", err)
			}
			return nil, apperrors.NewInternal(err)
		}
		if doctor.HospitalID != hospitalID {
			return nil, apperrors.NewNotFound("doctor", nil)
		}
		return doctor, nil
	}

	matches, err := s.doctors.FindActiveByName(ctx, hospitalID, ref)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	switch len(matches) {
	case 0:
		return nil, apperrors.NewNotFound("doctor", nil)
	case 1:
		return matches[0], nil
	default:
		return nil, apperrors.NewAmbiguousDoctor(
			fmt.Sprintf("doctor reference %q matches %d active doctors", ref, len(matches)))
	}
}

// placeAppointment runs the guarded check-and-insert for a resolved
// doctor. The guard is held only across the ledger check and the
// insert; event emission happens outside it.
func (s *Service) placeAppointment(ctx context.Context, doctor *model.Doctor, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	seats, err := s.availability.HasSlot(ctx, doctor.ID, req.StartAt, req.EndAt)
	if err != nil {
		return nil, err
	}
	if seats == 0 {
		return nil, apperrors.NewSlotNotAvailable("doctor does not offer this slot")
	}

	release, err := s.guard.Acquire(ctx, doctor.ID, req.StartAt)
	if err != nil {
		return nil, err
	}
	defer release()

	key := model.SlotKey{DoctorID: doctor.ID, StartAt: req.StartAt, EndAt: req.EndAt}

	// The guard serializes this slot, so check-then-insert cannot race
	// with another booking for the same patient here.
	dups, err := s.appointments.CountActiveForPatient(ctx, req.PatientID, key)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	if dups > 0 {
		return nil, apperrors.NewConflict("patient already holds an active booking for this slot")
	}

	if err := s.ledger.TryReserve(ctx, key, seats); err != nil {
		return nil, err
	}

	appt := &model.Appointment{
		HospitalID: req.HospitalID,
		DoctorID:   doctor.ID,
		PatientID:  req.PatientID,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Status:     model.AppointmentStatusPending,
		Source:     req.Source,
		Notes:      req.Notes,
	}
	if appt.Source == "" {
		appt.Source = model.AppointmentSourceManual
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		if relErr := s.ledger.Release(ctx, key); relErr != nil {
			s.logger.Error(relErr, "seat release failed after insert failure", "slot", key.String())
		}
		return nil, apperrors.NewInternal(err)
	}
	return appt, nil
}

// Cancel cancels an appointment and frees its seat. Cancelling an
// already-cancelled appointment reports the cancelled row without
// releasing the seat twice.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, req *model.CancelAppointmentRequest) (*model.Appointment, error) {
	appt, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	switch appt.Status {
	case model.AppointmentStatusCancelled:
		return appt, nil
	case model.AppointmentStatusCompleted, model.AppointmentStatusNoShow:
		return nil, apperrors.NewConflict(fmt.Sprintf("appointment is already %s", appt.Status))
	}

	var reason *string
	if req != nil && req.Reason != "" {
		reason = &req.Reason
	}
	if err := s.cancelRow(ctx, appt, reason); err != nil {
		return nil, err
	}

	ev := event.NewAppointmentEvent(appt)
	if reason != nil {
		ev.Reason = *reason
	}
	s.emit(ctx, event.TopicAppointmentCancelled, appt.ID, ev)
	s.audit.Log(ctx, appt.HospitalID, model.AuditActionCancelled, model.AuditEntityAppointment, appt.ID, &audit.LogOptions{Context: ev})
	return appt, nil
}

// cancelRow flips the row to cancelled and releases the seat. Callers
// own event emission.
func (s *Service) cancelRow(ctx context.Context, appt *model.Appointment, reason *string) error {
	now := time.Now().UTC()
	appt.Status = model.AppointmentStatusCancelled
	appt.CancelledAt = &now
	appt.CancelReason = reason
	if err := s.appointments.Update(ctx, appt); err != nil {
		return apperrors.NewInternal(err)
	}
	if err := s.ledger.Release(ctx, appt.Slot()); err != nil {
		s.logger.Error(err, "seat release failed after cancel", "appointment_id", appt.ID.String())
	}
	return nil
}

// Reschedule moves an appointment to a new slot with the same doctor.
// The replacement is booked first and the original cancelled second, so
// a failed booking leaves the original untouched; if the cancel leg
// fails the replacement is cancelled again to undo the move.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, req *model.RescheduleAppointmentRequest) (*model.Appointment, error) {
	if !req.EndAt.After(req.StartAt) {
		return nil, apperrors.NewInvalidRange("end_at must be after start_at")
	}

	appt, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status.Terminal() {
		return nil, apperrors.NewConflict(fmt.Sprintf("cannot reschedule a %s appointment", appt.Status))
	}
	if appt.StartAt.Equal(req.StartAt) && appt.EndAt.Equal(req.EndAt) {
		return appt, nil
	}

	doctor, err := s.doctors.Get(ctx, appt.DoctorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("doctor", err)
		}
		return nil, apperrors.NewInternal(err)
	}

	replacement, err := s.placeAppointment(ctx, doctor, &model.BookAppointmentRequest{
		HospitalID: appt.HospitalID,
		PatientID:  appt.PatientID,
		DoctorRef:  appt.DoctorID.String(),
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Source:     appt.Source,
		Notes:      appt.Notes,
	})
	if err != nil {
		return nil, err
	}

	reason := "rescheduled"
	if err := s.cancelRow(ctx, appt, &reason); err != nil {
		undo := "reschedule failed"
		if cerr := s.cancelRow(ctx, replacement, &undo); cerr != nil {
			s.logger.Error(cerr, "reschedule compensation failed, duplicate booking may remain",
				"appointment_id", appt.ID.String(),
				"replacement_id", replacement.ID.String())
		}
		return nil, err
	}

	ev := event.NewAppointmentEvent(replacement)
	ev.PreviousStart = &appt.StartAt
	ev.PreviousEnd = &appt.EndAt
	s.emit(ctx, event.TopicAppointmentRescheduled, replacement.ID, ev)
	s.audit.Log(ctx, replacement.HospitalID, model.AuditActionRescheduled, model.AuditEntityAppointment, replacement.ID, &audit.LogOptions{Context: ev})
	return replacement, nil
}

// Confirm moves a pending appointment to confirmed. Confirming twice is
// a no-op.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	switch appt.Status {
	case model.AppointmentStatusConfirmed:
		return appt, nil
	case model.AppointmentStatusPending:
	default:
		return nil, apperrors.NewConflict(fmt.Sprintf("cannot confirm a %s appointment", appt.Status))
	}

	now := time.Now().UTC()
	appt.Status = model.AppointmentStatusConfirmed
	appt.ConfirmedAt = &now
	if err := s.appointments.Update(ctx, appt); err != nil {
		return nil, apperrors.NewInternal(err)
	}

	s.emit(ctx, event.TopicAppointmentConfirmed, appt.ID, event.NewAppointmentEvent(appt))
	s.audit.Log(ctx, appt.HospitalID, model.AuditActionConfirmed, model.AuditEntityAppointment, appt.ID, nil)
	return appt, nil
}

// Complete marks a kept appointment completed and frees its seat.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.finish(ctx, id, model.AppointmentStatusCompleted)
}

// MarkNoShow marks a missed appointment and frees its seat.
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.finish(ctx, id, model.AppointmentStatusNoShow)
}

func (s *Service) finish(ctx context.Context, id uuid.UUID, terminal model.AppointmentStatus) (*model.Appointment, error) {
	appt, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status == terminal {
		return appt, nil
	}
	switch appt.Status {
	case model.AppointmentStatusPending, model.AppointmentStatusConfirmed:
	default:
		return nil, apperrors.NewConflict(fmt.Sprintf("cannot mark a %s appointment %s", appt.Status, terminal))
	}

	appt.Status = terminal
	if err := s.appointments.Update(ctx, appt); err != nil {
		return nil, apperrors.NewInternal(err)
	}
	if err := s.ledger.Release(ctx, appt.Slot()); err != nil {
		s.logger.Error(err, "seat release failed", "appointment_id", appt.ID.String())
	}

	topic := event.TopicAppointmentCompleted
	action := model.AuditActionCompleted
	if terminal == model.AppointmentStatusNoShow {
		topic = event.TopicAppointmentNoShow
		action = model.AuditActionNoShow
	}
	s.emit(ctx, topic, appt.ID, event.NewAppointmentEvent(appt))
	s.audit.Log(ctx, appt.HospitalID, action, model.AuditEntityAppointment, appt.ID, nil)
	return appt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.getAppointment(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.appointments.List(ctx, filters)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return appointments, nil
}

func (s *Service) getAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.appointments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("appointment", err)
		}
		return nil, apperrors.NewInternal(err)
	}
	return appt, nil
}

// recordRejection reports a refused booking attempt to the sinks.
// Malformed input and unknown ids are not scheduling decisions and are
// not reported.
func (s *Service) recordRejection(ctx context.Context, req *model.BookAppointmentRequest, cause error) {
	code := apperrors.CodeOf(cause)
	switch code {
	case apperrors.ErrAmbiguousDoctor, apperrors.ErrSlotNotAvailable,
		apperrors.ErrSlotFull, apperrors.ErrBookingTimeout:
	default:
		return
	}

	payload := event.BookingRejectedEvent{
		HospitalID: req.HospitalID,
		PatientID:  req.PatientID,
		DoctorRef:  req.DoctorRef,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Reason:     code.String(),
		OccurredAt: time.Now().UTC(),
	}
	s.emit(ctx, event.TopicAppointmentRejected, req.PatientID, payload)
	s.audit.Log(ctx, req.HospitalID, model.AuditActionRejected, model.AuditEntityPatient, req.PatientID, &audit.LogOptions{Context: payload})
}

func (s *Service) emit(ctx context.Context, topic string, aggregateID uuid.UUID, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Emit(ctx, topic, aggregateID, payload); err != nil {
		s.logger.Error(err, "failed to emit event", "topic", topic)
	}
}

func (s *Service) observeBooking(started time.Time, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.BookingsTotal.WithLabelValues(outcome).Inc()
	s.metrics.BookingLatency.Observe(time.Since(started).Seconds())
}

func outcomeOf(err error) string {
	return apperrors.CodeOf(err).String()
}
