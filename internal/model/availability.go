package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Weekday follows the 0=Monday .. 6=Sunday convention used by the
// availability tables, not time.Weekday's 0=Sunday.
type Weekday int

const (
	WeekdayMonday Weekday = iota
	WeekdayTuesday
	WeekdayWednesday
	WeekdayThursday
	WeekdayFriday
	WeekdaySaturday
	WeekdaySunday
)

// WeekdayFromTime converts a time.Weekday to the Monday-based convention.
func WeekdayFromTime(w time.Weekday) Weekday {
	return Weekday((int(w) + 6) % 7)
}

func (w Weekday) Valid() bool {
	return w >= WeekdayMonday && w <= WeekdaySunday
}

// AvailabilityRule is a recurring weekly window during which a doctor
// accepts appointments. StartTime and EndTime are wall-clock "HH:MM"
// strings with minute precision; a SlotDurationMinutes of zero means the
// whole window is offered as a single slot.
type AvailabilityRule struct {
	Base
	DoctorID            uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Weekday             Weekday   `db:"weekday" json:"weekday"`
	StartTime           string    `db:"start_time" json:"start_time"`
	EndTime             string    `db:"end_time" json:"end_time"`
	Capacity            int       `db:"capacity" json:"capacity"`
	SlotDurationMinutes int       `db:"slot_duration_minutes" json:"slot_duration_minutes"`
	IsActive            bool      `db:"is_active" json:"is_active"`
}

// WindowMinutes returns the start and end of the rule window as minutes
// since midnight. Malformed times return an error rather than a zero
// window so bad rows surface instead of silently producing no slots.
func (r *AvailabilityRule) WindowMinutes() (start, end int, err error) {
	start, err = parseClock(r.StartTime)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start_time %q: %w", r.StartTime, err)
	}
	end, err = parseClock(r.EndTime)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end_time %q: %w", r.EndTime, err)
	}
	return start, end, nil
}

func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, err
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("out of range")
	}
	return h*60 + m, nil
}

type CreateAvailabilityRuleRequest struct {
	Weekday             Weekday `json:"weekday" binding:"min=0,max=6"`
	StartTime           string  `json:"start_time" binding:"required"`
	EndTime             string  `json:"end_time" binding:"required"`
	Capacity            int     `json:"capacity" binding:"required,min=1"`
	SlotDurationMinutes int     `json:"slot_duration_minutes" binding:"min=0"`
}

type UpdateAvailabilityRuleRequest struct {
	Capacity            *int  `json:"capacity" binding:"omitempty,min=1"`
	SlotDurationMinutes *int  `json:"slot_duration_minutes" binding:"omitempty,min=0"`
	IsActive            *bool `json:"is_active"`
}

// TimeSlot is a concrete bookable interval produced by expanding a rule
// over real dates. StartAt and EndAt are UTC instants.
type TimeSlot struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	StartAt  time.Time `json:"start_at"`
	EndAt    time.Time `json:"end_at"`
	Capacity int       `json:"capacity"`
}

// Key returns the slot's identity for ledger and guard bookkeeping.
func (s TimeSlot) Key() SlotKey {
	return SlotKey{DoctorID: s.DoctorID, StartAt: s.StartAt, EndAt: s.EndAt}
}

// SlotKey identifies one slot occurrence of one doctor.
type SlotKey struct {
	DoctorID uuid.UUID
	StartAt  time.Time
	EndAt    time.Time
}

// String renders a canonical form safe to use as a map key; time.Time
// values carry a monotonic reading that breaks direct struct equality.
func (k SlotKey) String() string {
	return fmt.Sprintf("%s/%d/%d", k.DoctorID, k.StartAt.Unix(), k.EndAt.Unix())
}
