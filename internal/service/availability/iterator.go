package availability

import (
	"sort"
	"time"

	"github.com/hospiq/scheduling-api/internal/model"
)

// SlotIterator walks a doctor's concrete slots in ascending order without
// materializing the whole range: each call to Next expands at most one
// day's worth of rules.
type SlotIterator struct {
	rulesByDay map[model.Weekday][]*model.AvailabilityRule
	from       time.Time
	to         time.Time

	day  time.Time
	buf  []model.TimeSlot
	next int
	done bool
}

func newSlotIterator(rules []*model.AvailabilityRule, from, to time.Time) *SlotIterator {
	byDay := make(map[model.Weekday][]*model.AvailabilityRule)
	for _, rule := range rules {
		byDay[rule.Weekday] = append(byDay[rule.Weekday], rule)
	}

	return &SlotIterator{
		rulesByDay: byDay,
		from:       from,
		to:         to,
		day:        from.Truncate(24 * time.Hour),
	}
}

func emptyIterator() *SlotIterator {
	return &SlotIterator{done: true}
}

// Next returns the next slot in ascending (StartAt, EndAt) order. The
// second return value is false once the range is exhausted.
func (it *SlotIterator) Next() (model.TimeSlot, bool) {
	for {
		if it.done {
			return model.TimeSlot{}, false
		}
		if it.next < len(it.buf) {
			slot := it.buf[it.next]
			it.next++
			return slot, true
		}
		if it.day.After(it.to) {
			it.done = true
			return model.TimeSlot{}, false
		}
		it.fillDay()
		it.day = it.day.Add(24 * time.Hour)
	}
}

// Collect drains up to limit slots; limit <= 0 drains the iterator.
func (it *SlotIterator) Collect(limit int) []model.TimeSlot {
	var slots []model.TimeSlot
	for {
		if limit > 0 && len(slots) >= limit {
			return slots
		}
		slot, ok := it.Next()
		if !ok {
			return slots
		}
		slots = append(slots, slot)
	}
}

func (it *SlotIterator) fillDay() {
	it.buf = it.buf[:0]
	it.next = 0

	weekday := model.WeekdayFromTime(it.day.Weekday())
	for _, rule := range it.rulesByDay[weekday] {
		for _, slot := range expandRule(rule, it.day) {
			// whole-slot containment: partially covered slots are excluded
			if slot.StartAt.Before(it.from) || slot.EndAt.After(it.to) {
				continue
			}
			it.buf = append(it.buf, slot)
		}
	}

	sort.Slice(it.buf, func(i, j int) bool {
		if it.buf[i].StartAt.Equal(it.buf[j].StartAt) {
			return it.buf[i].EndAt.Before(it.buf[j].EndAt)
		}
		return it.buf[i].StartAt.Before(it.buf[j].StartAt)
	})
}

// expandRule materializes a rule's slots for one calendar day. A zero
// slot duration offers the whole window as a single slot; otherwise the
// window is subdivided and a trailing partial slot is dropped.
func expandRule(rule *model.AvailabilityRule, day time.Time) []model.TimeSlot {
	startMin, endMin, err := rule.WindowMinutes()
	if err != nil || endMin <= startMin {
		return nil
	}

	windowStart := day.Add(time.Duration(startMin) * time.Minute)
	windowEnd := day.Add(time.Duration(endMin) * time.Minute)

	if rule.SlotDurationMinutes <= 0 {
		return []model.TimeSlot{{
			DoctorID: rule.DoctorID,
			StartAt:  windowStart,
			EndAt:    windowEnd,
			Capacity: rule.Capacity,
		}}
	}

	step := time.Duration(rule.SlotDurationMinutes) * time.Minute
	var slots []model.TimeSlot
	for cursor := windowStart; cursor.Add(step).Before(windowEnd) || cursor.Add(step).Equal(windowEnd); cursor = cursor.Add(step) {
		slots = append(slots, model.TimeSlot{
			DoctorID: rule.DoctorID,
			StartAt:  cursor,
			EndAt:    cursor.Add(step),
			Capacity: rule.Capacity,
		})
	}
	return slots
}
