package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/evanschultz/hwplan/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "hwplan.snapshot.v1"

// Snapshot is the portable full state of the planner.
type Snapshot struct {
	Version       string                `json:"version"`
	ExportedAt    time.Time             `json:"exported_at"`
	Homework      []SnapshotHomework    `json:"homework"`
	Schedule      SnapshotSchedule      `json:"schedule"`
	Notifications SnapshotNotifications `json:"notifications"`
}

// SnapshotHomework represents snapshot homework data used by this package.
type SnapshotHomework struct {
	ID               string            `json:"id"`
	Subject          string            `json:"subject"`
	Title            string            `json:"title"`
	Content          string            `json:"content,omitempty"`
	DueDate          string            `json:"due_date"`
	TargetDate       string            `json:"target_date"`
	Pages            int               `json:"pages"`
	EstimatedMinutes int               `json:"estimated_minutes"`
	BlockedDates     []string          `json:"blocked_dates,omitempty"`
	Completed        bool              `json:"completed"`
	DailyTasks       []SnapshotDayTask `json:"daily_tasks"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// SnapshotDayTask represents snapshot day task data used by this package.
type SnapshotDayTask struct {
	Date      string `json:"date"`
	Pages     int    `json:"pages"`
	Minutes   int    `json:"minutes"`
	Completed bool   `json:"completed"`
}

// SnapshotSchedule represents snapshot schedule data used by this package.
type SnapshotSchedule struct {
	BlockedDates    []string `json:"blocked_dates,omitempty"`
	BlockedWeekdays []int    `json:"blocked_weekdays,omitempty"`
}

// SnapshotNotifications represents snapshot notification data used by this package.
type SnapshotNotifications struct {
	Enabled       bool   `json:"enabled"`
	ReminderDays  []int  `json:"reminder_days"`
	DailyReminder bool   `json:"daily_reminder"`
	ReminderTime  string `json:"reminder_time"`
}

// ExportSnapshot captures the full stored state.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	items, err := s.repo.ListHomework(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	schedule, err := s.globalSchedule(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	settings, err := s.GetNotificationSettings(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Version:       SnapshotVersion,
		ExportedAt:    s.clock().UTC(),
		Homework:      make([]SnapshotHomework, 0, len(items)),
		Schedule:      snapshotScheduleFromDomain(schedule),
		Notifications: snapshotNotificationsFromDomain(settings),
	}
	for _, h := range items {
		snap.Homework = append(snap.Homework, snapshotHomeworkFromDomain(h))
	}
	snap.sort()
	return snap, nil
}

// ImportSnapshot validates snap and replaces the stored state with it.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	snap.sort()

	items := make([]domain.Homework, 0, len(snap.Homework))
	for i, h := range snap.Homework {
		item, err := h.normalized()
		if err != nil {
			return fmt.Errorf("%w: homework[%d]: %w", ErrInvalidSnapshot, i, err)
		}
		items = append(items, item)
	}
	schedule, err := snap.Schedule.toDomain()
	if err != nil {
		return fmt.Errorf("%w: schedule: %w", ErrInvalidSnapshot, err)
	}
	settings, err := snap.Notifications.toDomain().Normalize()
	if err != nil {
		return fmt.Errorf("%w: notifications: %w", ErrInvalidSnapshot, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.ReplaceHomework(ctx, items); err != nil {
		return err
	}
	if err := s.repo.SaveGlobalSchedule(ctx, schedule); err != nil {
		return err
	}
	return s.repo.SaveNotificationSettings(ctx, settings)
}

// Validate validates the requested operation.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("%w: unsupported version %q", ErrInvalidSnapshot, s.Version)
	}

	ids := map[string]struct{}{}
	for i, h := range s.Homework {
		if strings.TrimSpace(h.ID) == "" {
			return fmt.Errorf("%w: homework[%d].id is required", ErrInvalidSnapshot, i)
		}
		if _, exists := ids[h.ID]; exists {
			return fmt.Errorf("%w: duplicate homework id %q", ErrInvalidSnapshot, h.ID)
		}
		ids[h.ID] = struct{}{}
		if _, err := h.normalized(); err != nil {
			return fmt.Errorf("%w: homework[%d]: %w", ErrInvalidSnapshot, i, err)
		}
		if h.CreatedAt.IsZero() || h.UpdatedAt.IsZero() {
			return fmt.Errorf("%w: homework[%d] timestamps are required", ErrInvalidSnapshot, i)
		}
		days := map[string]struct{}{}
		for j, t := range h.DailyTasks {
			if !domain.Day(t.Date).Valid() {
				return fmt.Errorf("%w: homework[%d].daily_tasks[%d].date %q is invalid", ErrInvalidSnapshot, i, j, t.Date)
			}
			if _, exists := days[t.Date]; exists {
				return fmt.Errorf("%w: homework[%d] has duplicate day %q", ErrInvalidSnapshot, i, t.Date)
			}
			if t.Pages < 0 || t.Minutes < 0 {
				return fmt.Errorf("%w: homework[%d].daily_tasks[%d] has negative work", ErrInvalidSnapshot, i, j)
			}
			days[t.Date] = struct{}{}
		}
	}
	return nil
}

// MarshalIndent renders snap as stable, human-readable JSON.
func (s Snapshot) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func (s *Snapshot) sort() {
	sort.SliceStable(s.Homework, func(i, j int) bool {
		a, b := s.Homework[i], s.Homework[j]
		if a.DueDate != b.DueDate {
			return a.DueDate < b.DueDate
		}
		return a.ID < b.ID
	})
	for i := range s.Homework {
		tasks := s.Homework[i].DailyTasks
		sort.SliceStable(tasks, func(a, b int) bool { return tasks[a].Date < tasks[b].Date })
	}
}

func snapshotHomeworkFromDomain(h domain.Homework) SnapshotHomework {
	out := SnapshotHomework{
		ID:               h.ID,
		Subject:          h.Subject,
		Title:            h.Title,
		Content:          h.Content,
		DueDate:          string(h.DueDate),
		TargetDate:       string(h.TargetDate),
		Pages:            h.Pages,
		EstimatedMinutes: h.EstimatedMinutes,
		BlockedDates:     daysToStrings(h.BlockedDates),
		Completed:        h.Completed,
		DailyTasks:       make([]SnapshotDayTask, 0, len(h.DailyTasks)),
		CreatedAt:        h.CreatedAt.UTC(),
		UpdatedAt:        h.UpdatedAt.UTC(),
	}
	for _, t := range h.DailyTasks {
		out.DailyTasks = append(out.DailyTasks, SnapshotDayTask{
			Date:      string(t.Date),
			Pages:     t.Pages,
			Minutes:   t.Minutes,
			Completed: t.Completed,
		})
	}
	return out
}

func snapshotScheduleFromDomain(s domain.GlobalSchedule) SnapshotSchedule {
	out := SnapshotSchedule{BlockedDates: daysToStrings(s.BlockedDates)}
	for _, wd := range s.BlockedWeekdays {
		out.BlockedWeekdays = append(out.BlockedWeekdays, int(wd))
	}
	return out
}

func snapshotNotificationsFromDomain(n domain.NotificationSettings) SnapshotNotifications {
	return SnapshotNotifications{
		Enabled:       n.Enabled,
		ReminderDays:  append([]int(nil), n.ReminderDays...),
		DailyReminder: n.DailyReminder,
		ReminderTime:  n.ReminderTime,
	}
}

func (h SnapshotHomework) toDomain() domain.Homework {
	out := domain.Homework{
		ID:               strings.TrimSpace(h.ID),
		Subject:          h.Subject,
		Title:            h.Title,
		Content:          h.Content,
		DueDate:          domain.Day(h.DueDate),
		TargetDate:       domain.Day(h.TargetDate),
		Pages:            h.Pages,
		EstimatedMinutes: h.EstimatedMinutes,
		BlockedDates:     stringsToDays(h.BlockedDates),
		Completed:        h.Completed,
		DailyTasks:       make([]domain.DayTask, 0, len(h.DailyTasks)),
		CreatedAt:        h.CreatedAt.UTC(),
		UpdatedAt:        h.UpdatedAt.UTC(),
	}
	for _, t := range h.DailyTasks {
		out.DailyTasks = append(out.DailyTasks, domain.DayTask{
			Date:      domain.Day(t.Date),
			Pages:     t.Pages,
			Minutes:   t.Minutes,
			Completed: t.Completed,
		})
	}
	return out
}

// normalized runs h through the homework constructor so stored items get trimmed text,
// a defaulted target date and sorted unique blocked dates. The plan and timestamps are
// carried over; a non-empty plan recomputes the completion flag.
func (h SnapshotHomework) normalized() (domain.Homework, error) {
	raw := h.toDomain()
	out, err := domain.NewHomework(raw.Input(), raw.CreatedAt)
	if err != nil {
		return domain.Homework{}, err
	}
	out.DailyTasks = raw.DailyTasks
	out.Completed = raw.Completed
	if len(out.DailyTasks) > 0 {
		out.Completed = out.PlanCompleted()
	}
	out.UpdatedAt = raw.UpdatedAt
	return out, nil
}

func (s SnapshotSchedule) toDomain() (domain.GlobalSchedule, error) {
	weekdays := make([]time.Weekday, 0, len(s.BlockedWeekdays))
	for _, wd := range s.BlockedWeekdays {
		weekdays = append(weekdays, time.Weekday(wd))
	}
	return domain.NewGlobalSchedule(stringsToDays(s.BlockedDates), weekdays)
}

func (n SnapshotNotifications) toDomain() domain.NotificationSettings {
	return domain.NotificationSettings{
		Enabled:       n.Enabled,
		ReminderDays:  append([]int(nil), n.ReminderDays...),
		DailyReminder: n.DailyReminder,
		ReminderTime:  n.ReminderTime,
	}
}

func daysToStrings(in []domain.Day) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, d := range in {
		out = append(out, string(d))
	}
	return out
}

func stringsToDays(in []string) []domain.Day {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Day, 0, len(in))
	for _, d := range in {
		out = append(out, domain.Day(d))
	}
	return out
}
