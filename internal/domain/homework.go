package domain

import (
	"slices"
	"strings"
	"time"
)

// Homework is one assignment with its per-day work plan.
type Homework struct {
	ID               string
	Subject          string
	Title            string
	Content          string
	DueDate          Day
	TargetDate       Day
	Pages            int
	EstimatedMinutes int
	BlockedDates     []Day
	Completed        bool
	DailyTasks       []DayTask
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HomeworkInput holds the user-editable fields of a homework item.
// An empty TargetDate defaults to DueDate.
type HomeworkInput struct {
	ID               string
	Subject          string
	Title            string
	Content          string
	DueDate          Day
	TargetDate       Day
	Pages            int
	EstimatedMinutes int
	BlockedDates     []Day
}

// NewHomework validates input and returns an item without a plan.
func NewHomework(in HomeworkInput, now time.Time) (Homework, error) {
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		return Homework{}, ErrInvalidID
	}
	in, err := normalizeHomeworkInput(in)
	if err != nil {
		return Homework{}, err
	}
	now = now.UTC()
	return Homework{
		ID:               in.ID,
		Subject:          in.Subject,
		Title:            in.Title,
		Content:          in.Content,
		DueDate:          in.DueDate,
		TargetDate:       in.TargetDate,
		Pages:            in.Pages,
		EstimatedMinutes: in.EstimatedMinutes,
		BlockedDates:     in.BlockedDates,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// UpdateDetails replaces the editable fields and reports whether the plan must be regenerated.
func (h *Homework) UpdateDetails(in HomeworkInput, now time.Time) (bool, error) {
	in, err := normalizeHomeworkInput(in)
	if err != nil {
		return false, err
	}
	replan := h.DueDate != in.DueDate ||
		h.TargetDate != in.TargetDate ||
		h.Pages != in.Pages ||
		h.EstimatedMinutes != in.EstimatedMinutes ||
		!slices.Equal(h.BlockedDates, in.BlockedDates)

	h.Subject = in.Subject
	h.Title = in.Title
	h.Content = in.Content
	h.DueDate = in.DueDate
	h.TargetDate = in.TargetDate
	h.Pages = in.Pages
	h.EstimatedMinutes = in.EstimatedMinutes
	h.BlockedDates = in.BlockedDates
	h.UpdatedAt = now.UTC()
	return replan, nil
}

// Input returns the editable fields of h.
func (h Homework) Input() HomeworkInput {
	return HomeworkInput{
		ID:               h.ID,
		Subject:          h.Subject,
		Title:            h.Title,
		Content:          h.Content,
		DueDate:          h.DueDate,
		TargetDate:       h.TargetDate,
		Pages:            h.Pages,
		EstimatedMinutes: h.EstimatedMinutes,
		BlockedDates:     slices.Clone(h.BlockedDates),
	}
}

func normalizeHomeworkInput(in HomeworkInput) (HomeworkInput, error) {
	in.Subject = strings.TrimSpace(in.Subject)
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if in.Subject == "" {
		return HomeworkInput{}, ErrInvalidSubject
	}
	if in.Title == "" {
		return HomeworkInput{}, ErrInvalidTitle
	}
	if in.Pages < 0 || in.EstimatedMinutes < 0 {
		return HomeworkInput{}, ErrInvalidQuantity
	}

	due, err := ParseDay(string(in.DueDate))
	if err != nil {
		return HomeworkInput{}, err
	}
	in.DueDate = due
	if strings.TrimSpace(string(in.TargetDate)) == "" {
		in.TargetDate = due
	} else {
		target, err := ParseDay(string(in.TargetDate))
		if err != nil {
			return HomeworkInput{}, err
		}
		if target.After(due) {
			return HomeworkInput{}, ErrTargetAfterDue
		}
		in.TargetDate = target
	}

	blocked, err := normalizeDays(in.BlockedDates)
	if err != nil {
		return HomeworkInput{}, err
	}
	in.BlockedDates = blocked
	return in, nil
}

// Task returns the allocation for date, if any.
func (h Homework) Task(date Day) (DayTask, bool) {
	for _, t := range h.DailyTasks {
		if t.Date == date {
			return t, true
		}
	}
	return DayTask{}, false
}

// ToggleDay flips completion of the allocation on date and recomputes the item flag.
func (h *Homework) ToggleDay(date Day, now time.Time) error {
	idx := slices.IndexFunc(h.DailyTasks, func(t DayTask) bool { return t.Date == date })
	if idx < 0 {
		return ErrTaskNotFound
	}
	tasks := slices.Clone(h.DailyTasks)
	tasks[idx].Completed = !tasks[idx].Completed
	h.DailyTasks = tasks
	h.Completed = allCompleted(tasks)
	h.UpdatedAt = now.UTC()
	return nil
}

// SetCompleted marks the item and every allocation done or not done.
func (h *Homework) SetCompleted(done bool, now time.Time) {
	tasks := slices.Clone(h.DailyTasks)
	for i := range tasks {
		tasks[i].Completed = done
	}
	h.DailyTasks = tasks
	h.Completed = done
	h.UpdatedAt = now.UTC()
}

// ToggleCompleted inverts the item completion flag across every allocation.
func (h *Homework) ToggleCompleted(now time.Time) {
	h.SetCompleted(!h.Completed, now)
}

// PlanCompleted reports whether every allocation is done. An empty plan is never completed.
func (h Homework) PlanCompleted() bool {
	return allCompleted(h.DailyTasks)
}

// allCompleted is false for an empty plan.
func allCompleted(tasks []DayTask) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, t := range tasks {
		if !t.Completed {
			return false
		}
	}
	return true
}

// Progress returns the completed share of allocations as a percentage.
func Progress(h Homework) float64 {
	if len(h.DailyTasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range h.DailyTasks {
		if t.Completed {
			done++
		}
	}
	return float64(done) / float64(len(h.DailyTasks)) * 100
}

// IsOverdue reports whether h is incomplete past its due date.
func IsOverdue(h Homework, today Day) bool {
	return !h.Completed && h.DueDate.Before(today)
}
