package domain

import (
	"slices"
	"testing"
	"time"
)

func TestNewGlobalScheduleNormalizes(t *testing.T) {
	s, err := NewGlobalSchedule(
		[]Day{"2024-03-05", " 2024-03-02", "2024-03-05"},
		[]time.Weekday{time.Saturday, time.Sunday, time.Saturday},
	)
	if err != nil {
		t.Fatalf("NewGlobalSchedule() error = %v", err)
	}
	if !slices.Equal(s.BlockedDates, []Day{"2024-03-02", "2024-03-05"}) {
		t.Fatalf("unexpected dates %v", s.BlockedDates)
	}
	if !slices.Equal(s.BlockedWeekdays, []time.Weekday{time.Sunday, time.Saturday}) {
		t.Fatalf("unexpected weekdays %v", s.BlockedWeekdays)
	}
	if _, err := NewGlobalSchedule(nil, []time.Weekday{7}); err != ErrInvalidWeekday {
		t.Fatalf("expected ErrInvalidWeekday, got %v", err)
	}
	if _, err := NewGlobalSchedule([]Day{"03/05/2024"}, nil); err != ErrInvalidDay {
		t.Fatalf("expected ErrInvalidDay, got %v", err)
	}
}

func TestGlobalScheduleBlockUnblock(t *testing.T) {
	s, err := GlobalSchedule{}.Block("2024-03-04", "2024-03-01")
	if err != nil {
		t.Fatalf("Block() error = %v", err)
	}
	if !slices.Equal(s.BlockedDates, []Day{"2024-03-01", "2024-03-04"}) {
		t.Fatalf("unexpected dates %v", s.BlockedDates)
	}
	s = s.Unblock("2024-03-01")
	if !slices.Equal(s.BlockedDates, []Day{"2024-03-04"}) {
		t.Fatalf("unexpected dates after unblock %v", s.BlockedDates)
	}
}

func TestResolveBlockedUnion(t *testing.T) {
	schedule := &GlobalSchedule{
		BlockedDates:    []Day{"2024-03-04", "2024-03-01"},
		BlockedWeekdays: []time.Weekday{time.Sunday},
	}
	set := ResolveBlocked([]Day{"2024-03-01", "2024-03-06"}, schedule, "2024-03-01", "2024-03-10")
	want := []Day{"2024-03-01", "2024-03-03", "2024-03-04", "2024-03-06", "2024-03-10"}
	if got := set.Sorted(); !slices.Equal(got, want) {
		t.Fatalf("ResolveBlocked() = %v, want %v", got, want)
	}
	// recurring weekday outside the window is not expanded
	if set.Has("2024-03-17") {
		t.Fatal("weekday expansion leaked outside the range")
	}
}

func TestResolveBlockedNilSchedule(t *testing.T) {
	set := ResolveBlocked([]Day{"2024-03-02"}, nil, "2024-03-01", "2024-03-05")
	if len(set) != 1 || !set.Has("2024-03-02") {
		t.Fatalf("unexpected set %v", set.Sorted())
	}
}

func TestAvailableDays(t *testing.T) {
	blocked := DaySet{"2024-03-02": {}}
	got := AvailableDays("2024-03-01", "2024-03-04", blocked)
	want := []Day{"2024-03-01", "2024-03-03", "2024-03-04"}
	if !slices.Equal(got, want) {
		t.Fatalf("AvailableDays() = %v, want %v", got, want)
	}
	if got := AvailableDays("2024-03-05", "2024-03-01", nil); len(got) != 0 {
		t.Fatalf("expected no days for inverted window, got %v", got)
	}
}
