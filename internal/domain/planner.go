package domain

import (
	"slices"
)

// DayTask is the work allocated to one calendar day of a homework plan.
type DayTask struct {
	Date      Day
	Pages     int
	Minutes   int
	Completed bool
}

// HasWork reports whether the allocation still carries a non-zero share.
func (t DayTask) HasWork() bool {
	return t.Pages > 0 || t.Minutes > 0
}

// Distribute splits pages and minutes into equal ceiling shares over days.
// Empty days yield an empty plan.
func Distribute(pages, minutes int, days []Day) []DayTask {
	if len(days) == 0 {
		return []DayTask{}
	}
	perPages := ceilDiv(max(pages, 0), len(days))
	perMinutes := ceilDiv(max(minutes, 0), len(days))
	out := make([]DayTask, 0, len(days))
	for _, d := range days {
		out = append(out, DayTask{Date: d, Pages: perPages, Minutes: perMinutes})
	}
	return out
}

func ceilDiv(total, n int) int {
	if n <= 0 || total <= 0 {
		return 0
	}
	return (total + n - 1) / n
}

// GenerateDailyTasks builds a fresh plan from today through the target date.
func GenerateDailyTasks(h Homework, schedule *GlobalSchedule, today Day) []DayTask {
	blocked := ResolveBlocked(h.BlockedDates, schedule, today, h.TargetDate)
	return Distribute(h.Pages, h.EstimatedMinutes, AvailableDays(today, h.TargetDate, blocked))
}

// Reschedule folds missed work into the remaining open days of the plan.
//
// An allocation is stale when it is dated on or before today, is not completed, and still
// carries work. Stale work plus the open share of each target day is re-split evenly across
// the target days: open days from today through the target date that already hold an
// incomplete allocation. Stale allocations that are not targets are zeroed, not removed.
// With no stale allocation the item is returned unchanged.
func Reschedule(h Homework, schedule *GlobalSchedule, today Day) Homework {
	stale := map[Day]struct{}{}
	for _, t := range h.DailyTasks {
		if !t.Completed && t.HasWork() && !t.Date.After(today) {
			stale[t.Date] = struct{}{}
		}
	}
	if len(stale) == 0 {
		return h
	}

	blocked := ResolveBlocked(h.BlockedDates, schedule, today, h.TargetDate)
	open := AvailableDays(today, h.TargetDate, blocked)
	openSet := make(map[Day]struct{}, len(open))
	for _, d := range open {
		openSet[d] = struct{}{}
	}

	var targets []Day
	pages, minutes := 0, 0
	for _, t := range h.DailyTasks {
		_, isStale := stale[t.Date]
		_, isOpen := openSet[t.Date]
		isTarget := isOpen && !t.Completed
		if isTarget {
			targets = append(targets, t.Date)
		}
		if isStale || isTarget {
			pages += t.Pages
			minutes += t.Minutes
		}
	}

	tasks := slices.Clone(h.DailyTasks)
	if len(targets) == 0 {
		// no existing open allocation; seed open days that have no allocation yet
		var fresh []Day
		for _, d := range open {
			if _, ok := h.Task(d); !ok {
				fresh = append(fresh, d)
			}
		}
		zeroStale(tasks, stale)
		if len(fresh) > 0 {
			tasks = append(tasks, Distribute(pages, minutes, fresh)...)
			slices.SortFunc(tasks, func(a, b DayTask) int {
				switch {
				case a.Date < b.Date:
					return -1
				case a.Date > b.Date:
					return 1
				}
				return 0
			})
		}
		h.DailyTasks = tasks
		h.Completed = allCompleted(tasks)
		return h
	}

	shares := Distribute(pages, minutes, targets)
	byDay := make(map[Day]DayTask, len(shares))
	for _, s := range shares {
		byDay[s.Date] = s
	}
	for i, t := range tasks {
		if share, ok := byDay[t.Date]; ok {
			tasks[i].Pages = share.Pages
			tasks[i].Minutes = share.Minutes
			continue
		}
		if _, ok := stale[t.Date]; ok {
			tasks[i].Pages = 0
			tasks[i].Minutes = 0
		}
	}
	h.DailyTasks = tasks
	return h
}

func zeroStale(tasks []DayTask, stale map[Day]struct{}) {
	for i, t := range tasks {
		if _, ok := stale[t.Date]; ok {
			tasks[i].Pages = 0
			tasks[i].Minutes = 0
		}
	}
}
