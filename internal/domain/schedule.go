package domain

import (
	"slices"
	"time"
)

// GlobalSchedule holds blocked days shared by every homework item.
type GlobalSchedule struct {
	BlockedDates    []Day
	BlockedWeekdays []time.Weekday
}

// NewGlobalSchedule validates and normalizes a schedule.
func NewGlobalSchedule(dates []Day, weekdays []time.Weekday) (GlobalSchedule, error) {
	normalized, err := normalizeDays(dates)
	if err != nil {
		return GlobalSchedule{}, err
	}
	days, err := normalizeWeekdays(weekdays)
	if err != nil {
		return GlobalSchedule{}, err
	}
	return GlobalSchedule{BlockedDates: normalized, BlockedWeekdays: days}, nil
}

// BlocksWeekday reports whether wd recurs as a blocked weekday.
func (s GlobalSchedule) BlocksWeekday(wd time.Weekday) bool {
	return slices.Contains(s.BlockedWeekdays, wd)
}

// Block returns a copy of s with the supplied dates added.
func (s GlobalSchedule) Block(dates ...Day) (GlobalSchedule, error) {
	return NewGlobalSchedule(append(slices.Clone(s.BlockedDates), dates...), s.BlockedWeekdays)
}

// Unblock returns a copy of s without the supplied dates.
func (s GlobalSchedule) Unblock(dates ...Day) GlobalSchedule {
	out := GlobalSchedule{BlockedWeekdays: slices.Clone(s.BlockedWeekdays)}
	for _, d := range s.BlockedDates {
		if !slices.Contains(dates, d) {
			out.BlockedDates = append(out.BlockedDates, d)
		}
	}
	return out
}

func normalizeWeekdays(in []time.Weekday) ([]time.Weekday, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]time.Weekday, 0, len(in))
	for _, wd := range in {
		if wd < time.Sunday || wd > time.Saturday {
			return nil, ErrInvalidWeekday
		}
		if !slices.Contains(out, wd) {
			out = append(out, wd)
		}
	}
	slices.Sort(out)
	return out, nil
}

// DaySet is a membership set of calendar days.
type DaySet map[Day]struct{}

// Has reports whether d is in the set.
func (s DaySet) Has(d Day) bool {
	_, ok := s[d]
	return ok
}

// Sorted returns the members in ascending order.
func (s DaySet) Sorted() []Day {
	out := make([]Day, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

// ResolveBlocked merges item-specific blocked dates with the global schedule.
// Recurring weekdays expand to concrete dates within [from, to]; a nil schedule adds nothing.
func ResolveBlocked(itemBlocked []Day, schedule *GlobalSchedule, from, to Day) DaySet {
	set := DaySet{}
	for _, d := range itemBlocked {
		set[d] = struct{}{}
	}
	if schedule == nil {
		return set
	}
	for _, d := range schedule.BlockedDates {
		set[d] = struct{}{}
	}
	if len(schedule.BlockedWeekdays) == 0 {
		return set
	}
	for d := range DateRange(from, to) {
		if schedule.BlocksWeekday(d.Weekday()) {
			set[d] = struct{}{}
		}
	}
	return set
}

// AvailableDays lists the days in [from, to] that are not blocked.
func AvailableDays(from, to Day, blocked DaySet) []Day {
	var out []Day
	for d := range DateRange(from, to) {
		if !blocked.Has(d) {
			out = append(out, d)
		}
	}
	return out
}
