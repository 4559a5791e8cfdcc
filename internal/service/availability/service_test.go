package availability

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospiq/scheduling-api/internal/model"
	"github.com/hospiq/scheduling-api/internal/repository"
	apperrors "github.com/hospiq/scheduling-api/pkg/errors"
)

// doctorRepoStub serves one doctor; every other method panics through
// the embedded nil interface if a test reaches it unexpectedly.
type doctorRepoStub struct {
	repository.DoctorRepository
	doctor *model.Doctor
	err    error
}

func (s *doctorRepoStub) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.doctor, nil
}

type ruleRepoStub struct {
	repository.AvailabilityRepository
	rules    []*model.AvailabilityRule
	byWindow *model.AvailabilityRule
	created  *model.AvailabilityRule
	listed   bool
}

func (s *ruleRepoStub) ListActiveByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AvailabilityRule, error) {
	s.listed = true
	return s.rules, nil
}

func (s *ruleRepoStub) FindByWindow(ctx context.Context, doctorID uuid.UUID, weekday model.Weekday, startTime, endTime string) (*model.AvailabilityRule, error) {
	return s.byWindow, nil
}

func (s *ruleRepoStub) Create(ctx context.Context, rule *model.AvailabilityRule) error {
	s.created = rule
	return nil
}

func activeDoctor() *model.Doctor {
	return &model.Doctor{
		Base:       model.Base{ID: uuid.New()},
		HospitalID: uuid.New(),
		FullName:   "Dr Example",
		Status:     model.DoctorStatusActive,
	}
}

func TestSlotsBetweenRangeValidation(t *testing.T) {
	svc := NewService(&doctorRepoStub{doctor: activeDoctor()}, &ruleRepoStub{}, nil)

	_, err := svc.SlotsBetween(context.Background(), uuid.New(), monday, monday)
	assert.Equal(t, apperrors.ErrInvalidRange, apperrors.CodeOf(err))

	_, err = svc.SlotsBetween(context.Background(), uuid.New(), monday.Add(time.Hour), monday)
	assert.Equal(t, apperrors.ErrInvalidRange, apperrors.CodeOf(err))
}

func TestSlotsBetweenSpanCap(t *testing.T) {
	svc := NewService(&doctorRepoStub{doctor: activeDoctor()}, &ruleRepoStub{}, nil)

	_, err := svc.SlotsBetween(context.Background(), uuid.New(), monday, monday.AddDate(0, 0, 91))
	assert.Equal(t, apperrors.ErrInvalidRange, apperrors.CodeOf(err))

	svc.SetMaxQuerySpan(48 * time.Hour)
	_, err = svc.SlotsBetween(context.Background(), uuid.New(), monday, monday.AddDate(0, 0, 3))
	assert.Equal(t, apperrors.ErrInvalidRange, apperrors.CodeOf(err))

	_, err = svc.SlotsBetween(context.Background(), uuid.New(), monday, monday.AddDate(0, 0, 1))
	assert.NoError(t, err)
}

func TestSlotsBetweenUnknownDoctor(t *testing.T) {
	svc := NewService(&doctorRepoStub{err: sql.ErrNoRows}, &ruleRepoStub{}, nil)

	_, err := svc.SlotsBetween(context.Background(), uuid.New(), monday, monday.Add(24*time.Hour))
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func TestSlotsBetweenUnbookableDoctor(t *testing.T) {
	doctor := activeDoctor()
	doctor.Status = model.DoctorStatusOnLeave
	rules := &ruleRepoStub{rules: []*model.AvailabilityRule{
		weeklyRule(model.WeekdayMonday, "09:00", "12:00", 1, 30),
	}}
	svc := NewService(&doctorRepoStub{doctor: doctor}, rules, nil)

	it, err := svc.SlotsBetween(context.Background(), doctor.ID, monday, monday.AddDate(0, 0, 7))
	require.NoError(t, err)

	// A doctor on leave yields no slots and the rules are never loaded.
	assert.Empty(t, it.Collect(0))
	assert.False(t, rules.listed)
}

func TestHasSlot(t *testing.T) {
	rules := &ruleRepoStub{rules: []*model.AvailabilityRule{
		weeklyRule(model.WeekdayMonday, "09:00", "12:00", 2, 30),
	}}
	svc := NewService(&doctorRepoStub{doctor: activeDoctor()}, rules, nil)

	tests := []struct {
		name     string
		startAt  time.Time
		endAt    time.Time
		capacity int
	}{
		{"exact slot", monday.Add(9*time.Hour + 30*time.Minute), monday.Add(10 * time.Hour), 2},
		{"first slot of the window", monday.Add(9 * time.Hour), monday.Add(9*time.Hour + 30*time.Minute), 2},
		{"misaligned start", monday.Add(9*time.Hour + 15*time.Minute), monday.Add(9*time.Hour + 45*time.Minute), 0},
		{"wrong length", monday.Add(9 * time.Hour), monday.Add(10 * time.Hour), 0},
		{"wrong weekday", monday.AddDate(0, 0, 1).Add(9 * time.Hour), monday.AddDate(0, 0, 1).Add(9*time.Hour + 30*time.Minute), 0},
		{"outside the window", monday.Add(12 * time.Hour), monday.Add(12*time.Hour + 30*time.Minute), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capacity, err := svc.HasSlot(context.Background(), uuid.New(), tt.startAt, tt.endAt)
			require.NoError(t, err)
			assert.Equal(t, tt.capacity, capacity)
		})
	}
}

func TestHasSlotInvalidRange(t *testing.T) {
	svc := NewService(&doctorRepoStub{doctor: activeDoctor()}, &ruleRepoStub{}, nil)

	_, err := svc.HasSlot(context.Background(), uuid.New(), monday, monday)
	assert.Equal(t, apperrors.ErrInvalidRange, apperrors.CodeOf(err))
}

func TestCreateRuleValidation(t *testing.T) {
	tests := []struct {
		name string
		req  *model.CreateAvailabilityRuleRequest
		code apperrors.ErrorCode
	}{
		{
			"weekday out of range",
			&model.CreateAvailabilityRuleRequest{Weekday: 7, StartTime: "09:00", EndTime: "12:00", Capacity: 1},
			apperrors.ErrInvalidRange,
		},
		{
			"zero capacity",
			&model.CreateAvailabilityRuleRequest{Weekday: 0, StartTime: "09:00", EndTime: "12:00", Capacity: 0},
			apperrors.ErrInvalidRange,
		},
		{
			"window ends before it starts",
			&model.CreateAvailabilityRuleRequest{Weekday: 0, StartTime: "12:00", EndTime: "09:00", Capacity: 1},
			apperrors.ErrInvalidRange,
		},
		{
			"unparseable time",
			&model.CreateAvailabilityRuleRequest{Weekday: 0, StartTime: "9am", EndTime: "12:00", Capacity: 1},
			apperrors.ErrInvalidRange,
		},
		{
			"slot longer than the window",
			&model.CreateAvailabilityRuleRequest{Weekday: 0, StartTime: "09:00", EndTime: "10:00", Capacity: 1, SlotDurationMinutes: 90},
			apperrors.ErrInvalidRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&doctorRepoStub{doctor: activeDoctor()}, &ruleRepoStub{}, nil)
			_, err := svc.CreateRule(context.Background(), uuid.New(), tt.req)
			assert.Equal(t, tt.code, apperrors.CodeOf(err))
		})
	}
}

func TestCreateRuleRejectsDuplicateWindow(t *testing.T) {
	rules := &ruleRepoStub{byWindow: weeklyRule(model.WeekdayMonday, "09:00", "12:00", 1, 30)}
	svc := NewService(&doctorRepoStub{doctor: activeDoctor()}, rules, nil)

	_, err := svc.CreateRule(context.Background(), uuid.New(), &model.CreateAvailabilityRuleRequest{
		Weekday: model.WeekdayMonday, StartTime: "09:00", EndTime: "12:00", Capacity: 2, SlotDurationMinutes: 30,
	})
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))
	assert.Nil(t, rules.created)
}

func TestCreateRule(t *testing.T) {
	rules := &ruleRepoStub{}
	svc := NewService(&doctorRepoStub{doctor: activeDoctor()}, rules, nil)
	doctorID := uuid.New()

	rule, err := svc.CreateRule(context.Background(), doctorID, &model.CreateAvailabilityRuleRequest{
		Weekday: model.WeekdayFriday, StartTime: "08:30", EndTime: "11:30", Capacity: 4, SlotDurationMinutes: 20,
	})
	require.NoError(t, err)
	require.NotNil(t, rules.created)

	assert.Equal(t, doctorID, rule.DoctorID)
	assert.Equal(t, model.WeekdayFriday, rule.Weekday)
	assert.True(t, rule.IsActive)
	assert.Equal(t, 4, rule.Capacity)
}

func TestUpdateRule(t *testing.T) {
	existing := weeklyRule(model.WeekdayMonday, "09:00", "12:00", 2, 30)
	existing.ID = uuid.New()

	repo := &ruleRepoUpdateStub{rule: existing}
	svc := NewService(&doctorRepoStub{doctor: activeDoctor()}, repo, nil)

	capacity := 5
	inactive := false
	updated, err := svc.UpdateRule(context.Background(), existing.ID, &model.UpdateAvailabilityRuleRequest{
		Capacity: &capacity,
		IsActive: &inactive,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, updated.Capacity)
	assert.False(t, updated.IsActive)
	assert.True(t, repo.updated)

	zero := 0
	_, err = svc.UpdateRule(context.Background(), existing.ID, &model.UpdateAvailabilityRuleRequest{Capacity: &zero})
	assert.Equal(t, apperrors.ErrInvalidRange, apperrors.CodeOf(err))
}

type ruleRepoUpdateStub struct {
	repository.AvailabilityRepository
	rule    *model.AvailabilityRule
	updated bool
}

func (s *ruleRepoUpdateStub) Get(ctx context.Context, id uuid.UUID) (*model.AvailabilityRule, error) {
	return s.rule, nil
}

func (s *ruleRepoUpdateStub) Update(ctx context.Context, rule *model.AvailabilityRule) error {
	s.updated = true
	return nil
}
