package domain

import (
	"cmp"
	"slices"
)

// DayEntry pairs a homework item with its allocation on one day.
type DayEntry struct {
	Homework Homework
	Task     DayTask
}

// TasksOn lists the allocations scheduled on day ordered by subject then title.
// Completed items are skipped unless includeCompleted is set.
func TasksOn(items []Homework, day Day, includeCompleted bool) []DayEntry {
	var out []DayEntry
	for _, h := range items {
		if h.Completed && !includeCompleted {
			continue
		}
		t, ok := h.Task(day)
		if !ok {
			continue
		}
		out = append(out, DayEntry{Homework: h, Task: t})
	}
	slices.SortStableFunc(out, func(a, b DayEntry) int {
		return cmp.Or(
			cmp.Compare(a.Homework.Subject, b.Homework.Subject),
			cmp.Compare(a.Homework.Title, b.Homework.Title),
		)
	})
	return out
}

// DeadlinesOn lists incomplete items due on day.
func DeadlinesOn(items []Homework, day Day) []Homework {
	var out []Homework
	for _, h := range items {
		if !h.Completed && h.DueDate == day {
			out = append(out, h)
		}
	}
	return out
}

// UpcomingDeadlines lists incomplete items due within withinDays of today, overdue included,
// ordered by due date.
func UpcomingDeadlines(items []Homework, today Day, withinDays int) []Homework {
	var out []Homework
	for _, h := range items {
		if h.Completed {
			continue
		}
		if today.DaysUntil(h.DueDate) <= withinDays {
			out = append(out, h)
		}
	}
	slices.SortStableFunc(out, func(a, b Homework) int {
		return cmp.Compare(a.DueDate, b.DueDate)
	})
	return out
}

// Split separates active items from completed ones, preserving order.
func Split(items []Homework) (active, completed []Homework) {
	for _, h := range items {
		if h.Completed {
			completed = append(completed, h)
			continue
		}
		active = append(active, h)
	}
	return active, completed
}
