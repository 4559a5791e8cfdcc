package draft

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hospiq/scheduling-api/internal/model"
	"github.com/hospiq/scheduling-api/internal/repository"
	apperrors "github.com/hospiq/scheduling-api/pkg/errors"
	"github.com/hospiq/scheduling-api/pkg/logger"
	"github.com/hospiq/scheduling-api/pkg/metrics"
)

// Booker books the appointment a ready draft describes. The scheduler
// implements it.
type Booker interface {
	Book(ctx context.Context, req *model.BookAppointmentRequest) (*model.Appointment, error)
}

// SlotProber verifies that a doctor actually offers a concrete slot.
// The availability service implements it.
type SlotProber interface {
	HasSlot(ctx context.Context, doctorID uuid.UUID, startAt, endAt time.Time) (int, error)
}

// Service drives booking drafts through
// collecting -> ready -> confirmed | abandoned. One conversation turn
// mutates one draft at a time; concurrent turns on the same session
// serialize on the draft's lock.
type Service struct {
	store   *Store
	booker  Booker
	prober  SlotProber
	archive repository.DraftRepository
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(store *Store, booker Booker, prober SlotProber, archive repository.DraftRepository, l *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		booker:  booker,
		prober:  prober,
		archive: archive,
		logger:  l,
		metrics: m,
		now:     time.Now,
	}
}

// Open returns the session's live draft, creating one in `collecting`
// when the session has none. Reopening an active session is a no-op.
func (s *Service) Open(ctx context.Context, req *model.OpenDraftRequest) (*model.Draft, error) {
	hospitalID, err := uuid.Parse(req.HospitalID)
	if err != nil {
		return nil, apperrors.NewValidation("invalid hospital id", err)
	}
	channel := req.Channel
	if channel == "" {
		channel = model.DraftChannelWeb
	}

	now := s.now()
	e, created, expired := s.store.getOrCreate(req.SessionKey, now, func() *model.Draft {
		return &model.Draft{
			ID:         uuid.New(),
			SessionKey: req.SessionKey,
			HospitalID: hospitalID,
			Channel:    channel,
			State:      model.DraftStateCollecting,
			CreatedAt:  now,
			UpdatedAt:  now,
			ExpiresAt:  now.Add(s.store.TTL()),
		}
	})

	if expired != nil {
		s.archiveDraft(ctx, expired)
	}
	if created {
		s.transitionMetric(model.DraftStateCollecting)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot(e.draft), nil
}

// Get returns the live draft for the session.
func (s *Service) Get(ctx context.Context, sessionKey string) (*model.Draft, error) {
	e := s.store.get(sessionKey, s.now())
	if e == nil {
		return nil, apperrors.NewNotFound("draft", nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot(e.draft), nil
}

// SetPatient records the patient slot and recomputes readiness.
func (s *Service) SetPatient(ctx context.Context, sessionKey string, patientID uuid.UUID) (*model.Draft, error) {
	return s.mutate(ctx, sessionKey, func(d *model.Draft) error {
		d.PatientID = &patientID
		return nil
	})
}

// SetDepartment records the department slot. A previously chosen doctor
// stays chosen; the department matters only while no doctor is picked.
func (s *Service) SetDepartment(ctx context.Context, sessionKey string, departmentID uuid.UUID) (*model.Draft, error) {
	return s.mutate(ctx, sessionKey, func(d *model.Draft) error {
		d.DepartmentID = &departmentID
		return nil
	})
}

// UpdateSlot records the requested time window, with the doctor when the
// conversation has settled on one. A doctor's slot is probed against the
// availability index before it is accepted, so a draft never holds a
// slot its doctor does not offer.
func (s *Service) UpdateSlot(ctx context.Context, sessionKey string, req *model.UpdateDraftSlotRequest) (*model.Draft, error) {
	if !req.StartAt.Before(req.EndAt) {
		return nil, apperrors.NewInvalidRange("slot end must be after start")
	}

	var doctorID *uuid.UUID
	if req.DoctorID != nil {
		id, err := uuid.Parse(*req.DoctorID)
		if err != nil {
			return nil, apperrors.NewValidation("invalid doctor id", err)
		}
		doctorID = &id
	}

	startAt := req.StartAt.UTC()
	endAt := req.EndAt.UTC()

	slot := &model.TimeSlot{StartAt: startAt, EndAt: endAt}
	if doctorID != nil {
		capacity, err := s.prober.HasSlot(ctx, *doctorID, startAt, endAt)
		if err != nil {
			return nil, err
		}
		if capacity == 0 {
			return nil, apperrors.NewSlotNotAvailable("doctor does not offer this slot")
		}
		slot.DoctorID = *doctorID
		slot.Capacity = capacity
	}

	return s.mutate(ctx, sessionKey, func(d *model.Draft) error {
		d.DoctorID = doctorID
		d.Slot = slot
		if req.Notes != "" {
			d.Notes = req.Notes
		}
		return nil
	})
}

// Confirm books the draft. Only a ready draft confirms; success retires
// the draft, a slot conflict demotes it to collecting with the slot
// cleared so the conversation can offer alternatives.
func (s *Service) Confirm(ctx context.Context, sessionKey string) (*model.Draft, error) {
	e := s.store.get(sessionKey, s.now())
	if e == nil {
		return nil, apperrors.NewNotFound("draft", nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	d := e.draft
	if d.State.Terminal() {
		return nil, apperrors.NewNotFound("draft", nil)
	}
	if d.State != model.DraftStateReady {
		return nil, apperrors.NewConflict("draft is not ready to confirm")
	}

	if d.DoctorID == nil {
		// Department alone cannot be booked; the conversation must
		// narrow it down to one doctor first.
		s.setState(d, model.DraftStateCollecting)
		return snapshot(d), apperrors.NewAmbiguousDoctor("no doctor selected for the requested department")
	}

	appointment, err := s.booker.Book(ctx, &model.BookAppointmentRequest{
		HospitalID: d.HospitalID,
		PatientID:  *d.PatientID,
		DoctorRef:  d.DoctorID.String(),
		StartAt:    d.Slot.StartAt,
		EndAt:      d.Slot.EndAt,
		Source:     model.AppointmentSourceChatbot,
		Notes:      d.Notes,
	})
	if err != nil {
		switch apperrors.CodeOf(err) {
		case apperrors.ErrSlotFull, apperrors.ErrSlotNotAvailable, apperrors.ErrBookingTimeout:
			// The slot fell through; clear it and collect a new one.
			d.Slot = nil
			s.setState(d, model.DraftStateCollecting)
			return snapshot(d), err
		default:
			// Transient failure: the draft stays ready for a retry.
			return snapshot(d), err
		}
	}

	d.AppointmentID = &appointment.ID
	s.setState(d, model.DraftStateConfirmed)
	s.retire(ctx, sessionKey, e)
	return snapshot(d), nil
}

// Abandon cancels the draft. Abandoning a terminal or missing draft is a
// no-op so session teardown can always call it.
func (s *Service) Abandon(ctx context.Context, sessionKey string) (*model.Draft, error) {
	e := s.store.get(sessionKey, s.now())
	if e == nil {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	d := e.draft
	if d.State.Terminal() {
		return snapshot(d), nil
	}

	s.setState(d, model.DraftStateAbandoned)
	s.retire(ctx, sessionKey, e)
	return snapshot(d), nil
}

// SweepExpired expires idle drafts and archives them; the janitor calls
// it on a timer.
func (s *Service) SweepExpired(ctx context.Context) int {
	swept := s.store.sweep(s.now())
	for _, d := range swept {
		s.archiveDraft(ctx, d)
		if s.metrics != nil {
			s.metrics.DraftsExpired.Inc()
		}
	}
	return len(swept)
}

// mutate applies fn to the live draft, refreshes the TTL, and recomputes
// readiness. Terminal drafts are invisible here by construction: the
// store never holds them.
func (s *Service) mutate(ctx context.Context, sessionKey string, fn func(*model.Draft) error) (*model.Draft, error) {
	e := s.store.get(sessionKey, s.now())
	if e == nil {
		return nil, apperrors.NewNotFound("draft", nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	d := e.draft
	if d.State.Terminal() {
		return nil, apperrors.NewNotFound("draft", nil)
	}

	if err := fn(d); err != nil {
		return nil, err
	}

	now := s.now()
	d.UpdatedAt = now
	d.ExpiresAt = now.Add(s.store.TTL())

	next := model.DraftStateCollecting
	if d.Complete() {
		next = model.DraftStateReady
	}
	if next != d.State {
		s.setState(d, next)
	}

	return snapshot(d), nil
}

func (s *Service) setState(d *model.Draft, state model.DraftState) {
	d.State = state
	d.UpdatedAt = s.now()
	s.transitionMetric(state)
}

func (s *Service) transitionMetric(state model.DraftState) {
	if s.metrics != nil {
		s.metrics.DraftTransitions.WithLabelValues(string(state)).Inc()
	}
}

// retire archives a terminal draft and drops it from the live store.
// Caller holds the entry lock.
func (s *Service) retire(ctx context.Context, sessionKey string, e *entry) {
	s.archiveDraft(ctx, e.draft)
	s.store.remove(sessionKey, e)
}

func (s *Service) archiveDraft(ctx context.Context, d *model.Draft) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Archive(context.WithoutCancel(ctx), d); err != nil {
		s.logger.Error(err, "failed to archive draft",
			"draft_id", d.ID.String(), "state", string(d.State))
	}
}

// snapshot copies the draft so callers cannot reach back into the store
// through shared pointers.
func snapshot(d *model.Draft) *model.Draft {
	cp := *d
	if d.Slot != nil {
		slot := *d.Slot
		cp.Slot = &slot
	}
	return &cp
}

// ListArchived exposes the terminal draft archive for conversion
// analytics.
func (s *Service) ListArchived(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*model.Draft, error) {
	if s.archive == nil {
		return nil, nil
	}
	drafts, err := s.archive.ListArchived(ctx, hospitalID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived drafts: %w", err)
	}
	return drafts, nil
}
