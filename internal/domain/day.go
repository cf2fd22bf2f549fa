package domain

import (
	"iter"
	"slices"
	"strings"
	"time"
)

// DayLayout is the canonical calendar-day layout.
const DayLayout = "2006-01-02"

// Day identifies one local calendar day in YYYY-MM-DD form.
type Day string

// ParseDay validates and canonicalizes a calendar-day identifier.
func ParseDay(raw string) (Day, error) {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse(DayLayout, raw)
	if err != nil {
		return "", ErrInvalidDay
	}
	return Day(t.Format(DayLayout)), nil
}

// DayOf returns the wall-clock day of t in t's own location.
func DayOf(t time.Time) Day {
	return Day(t.Format(DayLayout))
}

// Valid reports whether d is a canonical calendar day.
func (d Day) Valid() bool {
	_, err := time.Parse(DayLayout, string(d))
	return err == nil
}

func (d Day) String() string {
	return string(d)
}

// Time returns midnight of d in loc. Invalid days return the zero time.
func (d Day) Time(loc *time.Location) time.Time {
	t, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// AddDays shifts d by n calendar days.
func (d Day) AddDays(n int) Day {
	t, ok := d.civil()
	if !ok {
		return d
	}
	return Day(t.AddDate(0, 0, n).Format(DayLayout))
}

// Weekday reports the day of the week of d.
func (d Day) Weekday() time.Weekday {
	t, _ := d.civil()
	return t.Weekday()
}

// Before reports whether d is earlier than other.
func (d Day) Before(other Day) bool {
	return d < other
}

// After reports whether d is later than other.
func (d Day) After(other Day) bool {
	return d > other
}

// DaysUntil returns the number of calendar days from d to other, negative when other is earlier.
func (d Day) DaysUntil(other Day) int {
	from, ok := d.civil()
	if !ok {
		return 0
	}
	to, ok := other.civil()
	if !ok {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}

// civil anchors d at noon UTC so calendar arithmetic never crosses a DST edge.
func (d Day) civil() (time.Time, bool) {
	t, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC), true
}

// DateRange yields every day from start through end inclusive.
// The sequence is empty when start is after end or either bound is invalid.
func DateRange(start, end Day) iter.Seq[Day] {
	return func(yield func(Day) bool) {
		from, ok := start.civil()
		if !ok {
			return
		}
		to, ok := end.civil()
		if !ok {
			return
		}
		for cur := from; !cur.After(to); cur = cur.AddDate(0, 0, 1) {
			if !yield(Day(cur.Format(DayLayout))) {
				return
			}
		}
	}
}

// normalizeDays trims, validates, de-duplicates, and sorts raw day strings.
func normalizeDays(raw []Day) ([]Day, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	seen := make(map[Day]struct{}, len(raw))
	out := make([]Day, 0, len(raw))
	for _, d := range raw {
		parsed, err := ParseDay(string(d))
		if err != nil {
			return nil, err
		}
		if _, ok := seen[parsed]; ok {
			continue
		}
		seen[parsed] = struct{}{}
		out = append(out, parsed)
	}
	// canonical YYYY-MM-DD sorts lexically in date order
	slices.Sort(out)
	return out, nil
}
