package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hospiq/scheduling-api/internal/model"
	"github.com/hospiq/scheduling-api/internal/repository"
	apperrors "github.com/hospiq/scheduling-api/pkg/errors"
	"github.com/hospiq/scheduling-api/pkg/metrics"
)

// DefaultMaxQuerySpan bounds how far a single slot query may reach.
const DefaultMaxQuerySpan = 90 * 24 * time.Hour

type Service struct {
	doctors repository.DoctorRepository
	rules   repository.AvailabilityRepository
	metrics *metrics.Metrics
	maxSpan time.Duration
}

func NewService(doctors repository.DoctorRepository, rules repository.AvailabilityRepository, m *metrics.Metrics) *Service {
	return &Service{
		doctors: doctors,
		rules:   rules,
		metrics: m,
		maxSpan: DefaultMaxQuerySpan,
	}
}

// SetMaxQuerySpan overrides the query range cap; zero or negative keeps
// the default.
func (s *Service) SetMaxQuerySpan(d time.Duration) {
	if d > 0 {
		s.maxSpan = d
	}
}

// SlotsBetween returns a lazy, ordered iterator over the doctor's concrete
// slots inside [from, to]. A doctor who cannot take bookings yields an
// empty iterator rather than an error.
func (s *Service) SlotsBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) (*SlotIterator, error) {
	if !from.Before(to) {
		return nil, apperrors.NewInvalidRange("query range end must be after start")
	}
	if to.Sub(from) > s.maxSpan {
		return nil, apperrors.NewInvalidRange(fmt.Sprintf("query range exceeds %s", s.maxSpan))
	}

	doctor, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to load doctor: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SlotQueries.Inc()
	}

	if !doctor.Bookable() {
		return emptyIterator(), nil
	}

	rules, err := s.rules.ListActiveByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load availability rules: %w", err)
	}

	return newSlotIterator(rules, from.UTC(), to.UTC()), nil
}

// HasSlot checks whether the doctor's rules produce exactly this slot
// and returns its capacity; zero means the doctor does not offer it.
// Policy stays with the caller, which knows whether a missing slot is
// an error.
func (s *Service) HasSlot(ctx context.Context, doctorID uuid.UUID, startAt, endAt time.Time) (int, error) {
	if !startAt.Before(endAt) {
		return 0, apperrors.NewInvalidRange("slot end must be after start")
	}

	rules, err := s.rules.ListActiveByDoctor(ctx, doctorID)
	if err != nil {
		return 0, fmt.Errorf("failed to load availability rules: %w", err)
	}

	day := startAt.UTC().Truncate(24 * time.Hour)
	weekday := model.WeekdayFromTime(day.Weekday())
	for _, rule := range rules {
		if rule.Weekday != weekday {
			continue
		}
		for _, slot := range expandRule(rule, day) {
			if slot.StartAt.Equal(startAt.UTC()) && slot.EndAt.Equal(endAt.UTC()) {
				return rule.Capacity, nil
			}
		}
	}

	return 0, nil
}

// CreateRule registers a weekly window after validating it and rejecting
// duplicates of the same (weekday, start, end) window.
func (s *Service) CreateRule(ctx context.Context, doctorID uuid.UUID, req *model.CreateAvailabilityRuleRequest) (*model.AvailabilityRule, error) {
	if _, err := s.doctors.Get(ctx, doctorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to load doctor: %w", err)
	}

	if !req.Weekday.Valid() {
		return nil, apperrors.NewInvalidRange("weekday must be between 0 (Monday) and 6 (Sunday)")
	}
	if req.Capacity < 1 {
		return nil, apperrors.NewInvalidRange("capacity must be at least 1")
	}
	if req.SlotDurationMinutes < 0 {
		return nil, apperrors.NewInvalidRange("slot duration cannot be negative")
	}

	rule := &model.AvailabilityRule{
		DoctorID:            doctorID,
		Weekday:             req.Weekday,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		Capacity:            req.Capacity,
		SlotDurationMinutes: req.SlotDurationMinutes,
		IsActive:            true,
	}

	start, end, err := rule.WindowMinutes()
	if err != nil {
		return nil, apperrors.NewInvalidRange(err.Error())
	}
	if end <= start {
		return nil, apperrors.NewInvalidRange("rule end time must be after start time")
	}
	if rule.SlotDurationMinutes > 0 && rule.SlotDurationMinutes > end-start {
		return nil, apperrors.NewInvalidRange("slot duration exceeds the rule window")
	}

	existing, err := s.rules.FindByWindow(ctx, doctorID, rule.Weekday, rule.StartTime, rule.EndTime)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate rule: %w", err)
	}
	if existing != nil {
		return nil, apperrors.NewConflict("an availability rule for this window already exists")
	}

	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create availability rule: %w", err)
	}
	return rule, nil
}

func (s *Service) GetRule(ctx context.Context, id uuid.UUID) (*model.AvailabilityRule, error) {
	rule, err := s.rules.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("availability rule", err)
		}
		return nil, fmt.Errorf("failed to get availability rule: %w", err)
	}
	return rule, nil
}

func (s *Service) UpdateRule(ctx context.Context, id uuid.UUID, req *model.UpdateAvailabilityRuleRequest) (*model.AvailabilityRule, error) {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Capacity != nil {
		if *req.Capacity < 1 {
			return nil, apperrors.NewInvalidRange("capacity must be at least 1")
		}
		rule.Capacity = *req.Capacity
	}
	if req.SlotDurationMinutes != nil {
		if *req.SlotDurationMinutes < 0 {
			return nil, apperrors.NewInvalidRange("slot duration cannot be negative")
		}
		rule.SlotDurationMinutes = *req.SlotDurationMinutes
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to update availability rule: %w", err)
	}
	return rule, nil
}

func (s *Service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	if err := s.rules.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete availability rule: %w", err)
	}
	return nil
}

func (s *Service) ListRules(ctx context.Context, doctorID uuid.UUID) ([]*model.AvailabilityRule, error) {
	rules, err := s.rules.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability rules: %w", err)
	}
	return rules, nil
}
