package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evanschultz/hwplan/internal/app"
	"github.com/evanschultz/hwplan/internal/domain"
)

// AppServiceAdapter maps transport contracts onto app.Service.
type AppServiceAdapter struct {
	service *app.Service
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service}
}

// Today lists today's allocations, completed ones included.
func (a *AppServiceAdapter) Today(ctx context.Context) (TodayView, error) {
	if err := a.ready(); err != nil {
		return TodayView{}, err
	}
	entries, err := a.service.TodayTasks(ctx)
	if err != nil {
		return TodayView{}, mapAppError("today", err)
	}
	return TodayView{
		Date:  string(a.service.Today()),
		Tasks: dayEntryViews(entries),
	}, nil
}

// ListHomework lists every homework item.
func (a *AppServiceAdapter) ListHomework(ctx context.Context) ([]HomeworkView, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	items, err := a.service.ListHomework(ctx)
	if err != nil {
		return nil, mapAppError("list homework", err)
	}
	today := a.service.Today()
	out := make([]HomeworkView, 0, len(items))
	for _, h := range items {
		out = append(out, homeworkView(h, today))
	}
	return out, nil
}

// GetHomework returns one homework item.
func (a *AppServiceAdapter) GetHomework(ctx context.Context, id string) (HomeworkView, error) {
	if err := a.ready(); err != nil {
		return HomeworkView{}, err
	}
	id, err := requireID(id)
	if err != nil {
		return HomeworkView{}, err
	}
	h, err := a.service.GetHomework(ctx, id)
	if err != nil {
		return HomeworkView{}, mapAppError("get homework", err)
	}
	return homeworkView(h, a.service.Today()), nil
}

// ToggleHomework flips the completion flag of one item.
func (a *AppServiceAdapter) ToggleHomework(ctx context.Context, id string) (HomeworkView, error) {
	if err := a.ready(); err != nil {
		return HomeworkView{}, err
	}
	id, err := requireID(id)
	if err != nil {
		return HomeworkView{}, err
	}
	h, err := a.service.ToggleHomeworkComplete(ctx, id)
	if err != nil {
		return HomeworkView{}, mapAppError("toggle homework", err)
	}
	return homeworkView(h, a.service.Today()), nil
}

// ToggleDayTask flips one day allocation. An empty date means today.
func (a *AppServiceAdapter) ToggleDayTask(ctx context.Context, id, date string) (HomeworkView, error) {
	if err := a.ready(); err != nil {
		return HomeworkView{}, err
	}
	id, err := requireID(id)
	if err != nil {
		return HomeworkView{}, err
	}
	day := a.service.Today()
	if strings.TrimSpace(date) != "" {
		day, err = domain.ParseDay(date)
		if err != nil {
			return HomeworkView{}, mapAppError("toggle day task", err)
		}
	}
	h, err := a.service.ToggleDayTask(ctx, id, day)
	if err != nil {
		return HomeworkView{}, mapAppError("toggle day task", err)
	}
	return homeworkView(h, a.service.Today()), nil
}

// Deadlines lists overdue and upcoming incomplete items.
func (a *AppServiceAdapter) Deadlines(ctx context.Context) ([]DeadlineView, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	items, err := a.service.UpcomingDeadlines(ctx)
	if err != nil {
		return nil, mapAppError("deadlines", err)
	}
	return deadlineViews(items, a.service.Today()), nil
}

// CalendarDay returns the work and deadlines of one date.
func (a *AppServiceAdapter) CalendarDay(ctx context.Context, date string) (CalendarDayView, error) {
	if err := a.ready(); err != nil {
		return CalendarDayView{}, err
	}
	day, err := domain.ParseDay(date)
	if err != nil {
		return CalendarDayView{}, mapAppError("calendar", err)
	}
	days, err := a.service.Calendar(ctx, day, 1)
	if err != nil {
		return CalendarDayView{}, mapAppError("calendar", err)
	}
	out := CalendarDayView{Date: string(day), Tasks: []DayEntryView{}, Deadlines: []DeadlineView{}}
	if len(days) == 1 {
		out.Tasks = dayEntryViews(days[0].Tasks)
		out.Deadlines = deadlineViews(days[0].Deadlines, a.service.Today())
	}
	return out, nil
}

func (a *AppServiceAdapter) ready() error {
	if a == nil || a.service == nil {
		return fmt.Errorf("app service adapter is not configured: %w", ErrUnavailable)
	}
	return nil
}

func requireID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("id is required: %w", ErrInvalidRequest)
	}
	return id, nil
}

func homeworkView(h domain.Homework, today domain.Day) HomeworkView {
	out := HomeworkView{
		ID:               h.ID,
		Subject:          h.Subject,
		Title:            h.Title,
		Content:          h.Content,
		DueDate:          string(h.DueDate),
		TargetDate:       string(h.TargetDate),
		Pages:            h.Pages,
		EstimatedMinutes: h.EstimatedMinutes,
		Completed:        h.Completed,
		Overdue:          domain.IsOverdue(h, today),
		Progress:         domain.Progress(h),
		DailyTasks:       make([]DayTaskView, 0, len(h.DailyTasks)),
	}
	for _, d := range h.BlockedDates {
		out.BlockedDates = append(out.BlockedDates, string(d))
	}
	for _, t := range h.DailyTasks {
		out.DailyTasks = append(out.DailyTasks, dayTaskView(t))
	}
	return out
}

func dayTaskView(t domain.DayTask) DayTaskView {
	return DayTaskView{
		Date:      string(t.Date),
		Pages:     t.Pages,
		Minutes:   t.Minutes,
		Completed: t.Completed,
	}
}

func dayEntryViews(entries []domain.DayEntry) []DayEntryView {
	out := make([]DayEntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, DayEntryView{
			HomeworkID: e.Homework.ID,
			Subject:    e.Homework.Subject,
			Title:      e.Homework.Title,
			DueDate:    string(e.Homework.DueDate),
			Progress:   domain.Progress(e.Homework),
			Task:       dayTaskView(e.Task),
		})
	}
	return out
}

func deadlineViews(items []domain.Homework, today domain.Day) []DeadlineView {
	out := make([]DeadlineView, 0, len(items))
	for _, h := range items {
		out = append(out, DeadlineView{
			HomeworkID: h.ID,
			Subject:    h.Subject,
			Title:      h.Title,
			DueDate:    string(h.DueDate),
			DaysLeft:   today.DaysUntil(h.DueDate),
			Overdue:    domain.IsOverdue(h, today),
			Progress:   domain.Progress(h),
		})
	}
	return out
}

// mapAppError maps app/domain errors into transport-layer error sentinels.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, app.ErrNotFound),
		errors.Is(err, domain.ErrTaskNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidDay),
		errors.Is(err, domain.ErrInvalidSubject),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrTargetAfterDue),
		errors.Is(err, domain.ErrInvalidWeekday):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
