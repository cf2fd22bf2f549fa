package app

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/evanschultz/hwplan/internal/domain"
)

// DefaultUpcomingDays is the deadline look-ahead window.
const DefaultUpcomingDays = 7

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	// Location decides which wall-clock day is "today". Nil means time.Local.
	Location     *time.Location
	UpcomingDays int
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service runs homework use-cases over a Repository.
// Mutating calls are serialized so session rescheduling never interleaves with edits.
type Service struct {
	mu           sync.Mutex
	repo         Repository
	idGen        IDGenerator
	clock        Clock
	loc          *time.Location
	upcomingDays int
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.UpcomingDays <= 0 {
		cfg.UpcomingDays = DefaultUpcomingDays
	}
	return &Service{
		repo:         repo,
		idGen:        idGen,
		clock:        clock,
		loc:          cfg.Location,
		upcomingDays: cfg.UpcomingDays,
	}
}

// Today returns the current local calendar day.
func (s *Service) Today() domain.Day {
	return domain.DayOf(s.clock().In(s.loc))
}

// CreateHomeworkInput holds input values for create homework operations.
type CreateHomeworkInput struct {
	Subject          string
	Title            string
	Content          string
	DueDate          domain.Day
	TargetDate       domain.Day
	Pages            int
	EstimatedMinutes int
	BlockedDates     []domain.Day
}

// CreateHomework validates input, plans it from today, and stores it.
func (s *Service) CreateHomework(ctx context.Context, in CreateHomeworkInput) (domain.Homework, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := domain.NewHomework(domain.HomeworkInput{
		ID:               s.idGen(),
		Subject:          in.Subject,
		Title:            in.Title,
		Content:          in.Content,
		DueDate:          in.DueDate,
		TargetDate:       in.TargetDate,
		Pages:            in.Pages,
		EstimatedMinutes: in.EstimatedMinutes,
		BlockedDates:     in.BlockedDates,
	}, s.clock())
	if err != nil {
		return domain.Homework{}, err
	}
	schedule, err := s.globalSchedule(ctx)
	if err != nil {
		return domain.Homework{}, err
	}
	h.DailyTasks = domain.GenerateDailyTasks(h, &schedule, s.Today())
	if err := s.repo.CreateHomework(ctx, h); err != nil {
		return domain.Homework{}, err
	}
	return h, nil
}

// UpdateHomeworkInput holds input values for update homework operations.
type UpdateHomeworkInput struct {
	ID string
	CreateHomeworkInput
}

// UpdateHomework applies edits and regenerates the plan when scheduling fields changed.
// A regenerated plan starts from today and drops previous completion flags.
func (s *Service) UpdateHomework(ctx context.Context, in UpdateHomeworkInput) (domain.Homework, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.repo.GetHomework(ctx, in.ID)
	if err != nil {
		return domain.Homework{}, err
	}
	replan, err := h.UpdateDetails(domain.HomeworkInput{
		ID:               h.ID,
		Subject:          in.Subject,
		Title:            in.Title,
		Content:          in.Content,
		DueDate:          in.DueDate,
		TargetDate:       in.TargetDate,
		Pages:            in.Pages,
		EstimatedMinutes: in.EstimatedMinutes,
		BlockedDates:     in.BlockedDates,
	}, s.clock())
	if err != nil {
		return domain.Homework{}, err
	}
	if replan {
		schedule, err := s.globalSchedule(ctx)
		if err != nil {
			return domain.Homework{}, err
		}
		h.DailyTasks = domain.GenerateDailyTasks(h, &schedule, s.Today())
		h.Completed = false
	}
	if err := s.repo.UpdateHomework(ctx, h); err != nil {
		return domain.Homework{}, err
	}
	return h, nil
}

// DeleteHomework removes one homework item.
func (s *Service) DeleteHomework(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.DeleteHomework(ctx, id)
}

// GetHomework returns one homework item.
func (s *Service) GetHomework(ctx context.Context, id string) (domain.Homework, error) {
	return s.repo.GetHomework(ctx, id)
}

// ListHomework returns every homework item.
func (s *Service) ListHomework(ctx context.Context) ([]domain.Homework, error) {
	return s.repo.ListHomework(ctx)
}

// ToggleDayTask flips one day's completion, then reschedules the item.
func (s *Service) ToggleDayTask(ctx context.Context, id string, date domain.Day) (domain.Homework, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.repo.GetHomework(ctx, id)
	if err != nil {
		return domain.Homework{}, err
	}
	if err := h.ToggleDay(date, s.clock()); err != nil {
		return domain.Homework{}, fmt.Errorf("toggle %s on %s: %w", id, date, err)
	}
	schedule, err := s.globalSchedule(ctx)
	if err != nil {
		return domain.Homework{}, err
	}
	h = domain.Reschedule(h, &schedule, s.Today())
	if err := s.repo.UpdateHomework(ctx, h); err != nil {
		return domain.Homework{}, err
	}
	return h, nil
}

// ToggleHomeworkComplete flips the item completion flag across every day.
func (s *Service) ToggleHomeworkComplete(ctx context.Context, id string) (domain.Homework, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.repo.GetHomework(ctx, id)
	if err != nil {
		return domain.Homework{}, err
	}
	h.ToggleCompleted(s.clock())
	if err := s.repo.UpdateHomework(ctx, h); err != nil {
		return domain.Homework{}, err
	}
	return h, nil
}

// GetGlobalSchedule returns the stored schedule or an empty one.
func (s *Service) GetGlobalSchedule(ctx context.Context) (domain.GlobalSchedule, error) {
	return s.globalSchedule(ctx)
}

// UpdateGlobalSchedule stores the schedule and reschedules every item against it.
func (s *Service) UpdateGlobalSchedule(ctx context.Context, schedule domain.GlobalSchedule) (domain.GlobalSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule, err := domain.NewGlobalSchedule(schedule.BlockedDates, schedule.BlockedWeekdays)
	if err != nil {
		return domain.GlobalSchedule{}, err
	}
	if err := s.repo.SaveGlobalSchedule(ctx, schedule); err != nil {
		return domain.GlobalSchedule{}, err
	}
	if _, err := s.rescheduleAllLocked(ctx, schedule); err != nil {
		return domain.GlobalSchedule{}, err
	}
	return schedule, nil
}

// GetNotificationSettings returns the stored settings or the defaults.
func (s *Service) GetNotificationSettings(ctx context.Context) (domain.NotificationSettings, error) {
	settings, err := s.repo.GetNotificationSettings(ctx)
	if errors.Is(err, ErrNotFound) {
		return domain.DefaultNotificationSettings(), nil
	}
	if err != nil {
		return domain.NotificationSettings{}, err
	}
	return settings, nil
}

// UpdateNotificationSettings validates and stores settings.
func (s *Service) UpdateNotificationSettings(ctx context.Context, settings domain.NotificationSettings) (domain.NotificationSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := settings.Normalize()
	if err != nil {
		return domain.NotificationSettings{}, err
	}
	if err := s.repo.SaveNotificationSettings(ctx, settings); err != nil {
		return domain.NotificationSettings{}, err
	}
	return settings, nil
}

// StartSession reschedules every item for today and writes the collection back.
// It returns how many items changed.
func (s *Service) StartSession(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule, err := s.globalSchedule(ctx)
	if err != nil {
		return 0, err
	}
	return s.rescheduleAllLocked(ctx, schedule)
}

func (s *Service) rescheduleAllLocked(ctx context.Context, schedule domain.GlobalSchedule) (int, error) {
	items, err := s.repo.ListHomework(ctx)
	if err != nil {
		return 0, err
	}
	today := s.Today()
	changed := 0
	out := make([]domain.Homework, 0, len(items))
	for _, h := range items {
		next := domain.Reschedule(h, &schedule, today)
		if !reflect.DeepEqual(next.DailyTasks, h.DailyTasks) {
			changed++
		}
		out = append(out, next)
	}
	if changed == 0 {
		return 0, nil
	}
	if err := s.repo.ReplaceHomework(ctx, out); err != nil {
		return 0, err
	}
	return changed, nil
}

// TodayTasks lists today's allocations, completed items included.
func (s *Service) TodayTasks(ctx context.Context) ([]domain.DayEntry, error) {
	items, err := s.repo.ListHomework(ctx)
	if err != nil {
		return nil, err
	}
	return domain.TasksOn(items, s.Today(), true), nil
}

// CalendarDay is the planned work and deadlines of one date.
type CalendarDay struct {
	Day       domain.Day
	Tasks     []domain.DayEntry
	Deadlines []domain.Homework
}

// Calendar returns calendar entries for days consecutive dates starting at from.
// An empty from starts today.
func (s *Service) Calendar(ctx context.Context, from domain.Day, days int) ([]CalendarDay, error) {
	if from == "" {
		from = s.Today()
	}
	if !from.Valid() {
		return nil, domain.ErrInvalidDay
	}
	if days <= 0 {
		days = 1
	}
	items, err := s.repo.ListHomework(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CalendarDay, 0, days)
	for d := range domain.DateRange(from, from.AddDays(days-1)) {
		out = append(out, CalendarDay{
			Day:       d,
			Tasks:     domain.TasksOn(items, d, false),
			Deadlines: domain.DeadlinesOn(items, d),
		})
	}
	return out, nil
}

// UpcomingDeadlines lists incomplete items due within the configured window.
func (s *Service) UpcomingDeadlines(ctx context.Context) ([]domain.Homework, error) {
	items, err := s.repo.ListHomework(ctx)
	if err != nil {
		return nil, err
	}
	return domain.UpcomingDeadlines(items, s.Today(), s.upcomingDays), nil
}

// Reminders computes today's reminders from the stored settings.
func (s *Service) Reminders(ctx context.Context) ([]domain.Reminder, error) {
	settings, err := s.GetNotificationSettings(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListHomework(ctx)
	if err != nil {
		return nil, err
	}
	return domain.DueReminders(items, settings, s.Today()), nil
}

func (s *Service) globalSchedule(ctx context.Context) (domain.GlobalSchedule, error) {
	schedule, err := s.repo.GetGlobalSchedule(ctx)
	if errors.Is(err, ErrNotFound) {
		return domain.GlobalSchedule{}, nil
	}
	if err != nil {
		return domain.GlobalSchedule{}, err
	}
	return schedule, nil
}
