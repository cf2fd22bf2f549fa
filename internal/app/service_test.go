package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"testing"
	"time"

	"github.com/evanschultz/hwplan/internal/domain"
)

type fakeRepo struct {
	homework     map[string]domain.Homework
	schedule     *domain.GlobalSchedule
	settings     *domain.NotificationSettings
	replaceCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{homework: map[string]domain.Homework{}}
}

func (f *fakeRepo) CreateHomework(_ context.Context, h domain.Homework) error {
	f.homework[h.ID] = h
	return nil
}

func (f *fakeRepo) UpdateHomework(_ context.Context, h domain.Homework) error {
	if _, ok := f.homework[h.ID]; !ok {
		return ErrNotFound
	}
	f.homework[h.ID] = h
	return nil
}

func (f *fakeRepo) GetHomework(_ context.Context, id string) (domain.Homework, error) {
	h, ok := f.homework[id]
	if !ok {
		return domain.Homework{}, ErrNotFound
	}
	return h, nil
}

func (f *fakeRepo) ListHomework(context.Context) ([]domain.Homework, error) {
	out := make([]domain.Homework, 0, len(f.homework))
	for _, h := range f.homework {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) DeleteHomework(_ context.Context, id string) error {
	if _, ok := f.homework[id]; !ok {
		return ErrNotFound
	}
	delete(f.homework, id)
	return nil
}

func (f *fakeRepo) ReplaceHomework(_ context.Context, items []domain.Homework) error {
	f.replaceCalls++
	f.homework = map[string]domain.Homework{}
	for _, h := range items {
		f.homework[h.ID] = h
	}
	return nil
}

func (f *fakeRepo) GetGlobalSchedule(context.Context) (domain.GlobalSchedule, error) {
	if f.schedule == nil {
		return domain.GlobalSchedule{}, ErrNotFound
	}
	return *f.schedule, nil
}

func (f *fakeRepo) SaveGlobalSchedule(_ context.Context, s domain.GlobalSchedule) error {
	f.schedule = &s
	return nil
}

func (f *fakeRepo) GetNotificationSettings(context.Context) (domain.NotificationSettings, error) {
	if f.settings == nil {
		return domain.NotificationSettings{}, ErrNotFound
	}
	return *f.settings, nil
}

func (f *fakeRepo) SaveNotificationSettings(_ context.Context, s domain.NotificationSettings) error {
	f.settings = &s
	return nil
}

// testClock is a movable clock pinned to a local wall-clock time.
type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) advanceDays(n int) { c.now = c.now.AddDate(0, 0, n) }

func newTestService(repo *fakeRepo) (*Service, *testClock) {
	clock := &testClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	next := 0
	idGen := func() string {
		next++
		return fmt.Sprintf("hw-%d", next)
	}
	return NewService(repo, idGen, clock.Now, ServiceConfig{Location: time.UTC}), clock
}

func createSample(t *testing.T, svc *Service) domain.Homework {
	t.Helper()
	h, err := svc.CreateHomework(context.Background(), CreateHomeworkInput{
		Subject:          "Math",
		Title:            "Chapter 3",
		DueDate:          "2024-03-10",
		TargetDate:       "2024-03-05",
		Pages:            10,
		EstimatedMinutes: 100,
	})
	if err != nil {
		t.Fatalf("CreateHomework() error = %v", err)
	}
	return h
}

func TestCreateHomeworkGeneratesPlan(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)
	h := createSample(t, svc)
	if h.ID != "hw-1" {
		t.Fatalf("unexpected id %q", h.ID)
	}
	if len(h.DailyTasks) != 5 || h.DailyTasks[0].Date != "2024-03-01" || h.DailyTasks[0].Pages != 2 {
		t.Fatalf("unexpected plan %#v", h.DailyTasks)
	}
	if _, ok := repo.homework[h.ID]; !ok {
		t.Fatal("expected homework to be stored")
	}

	if _, err := svc.CreateHomework(context.Background(), CreateHomeworkInput{Title: "x", DueDate: "2024-03-02"}); !errors.Is(err, domain.ErrInvalidSubject) {
		t.Fatalf("expected ErrInvalidSubject, got %v", err)
	}
}

func TestCreateHomeworkUsesGlobalSchedule(t *testing.T) {
	repo := newFakeRepo()
	repo.schedule = &domain.GlobalSchedule{BlockedWeekdays: []time.Weekday{time.Saturday, time.Sunday}}
	svc, _ := newTestService(repo)
	h := createSample(t, svc)
	if len(h.DailyTasks) != 3 {
		t.Fatalf("expected weekend to be skipped, got %#v", h.DailyTasks)
	}
	if len(h.BlockedDates) != 0 {
		t.Fatalf("global schedule must not be copied into the item, got %v", h.BlockedDates)
	}
}

func TestTodayFollowsConfiguredLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	clock := func() time.Time { return time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC) }
	svc := NewService(newFakeRepo(), nil, clock, ServiceConfig{Location: loc})
	if got := svc.Today(); got != "2024-03-02" {
		t.Fatalf("Today() = %q, want 2024-03-02", got)
	}
}

func TestUpdateHomeworkRegeneratesOnlyWhenScheduleChanges(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)
	h := createSample(t, svc)
	ctx := context.Background()

	if _, err := svc.ToggleDayTask(ctx, h.ID, "2024-03-01"); err != nil {
		t.Fatalf("ToggleDayTask() error = %v", err)
	}

	in := UpdateHomeworkInput{ID: h.ID, CreateHomeworkInput: CreateHomeworkInput{
		Subject: "Math", Title: "Chapter 3 and 4", DueDate: "2024-03-10", TargetDate: "2024-03-05",
		Pages: 10, EstimatedMinutes: 100,
	}}
	updated, err := svc.UpdateHomework(ctx, in)
	if err != nil {
		t.Fatalf("UpdateHomework() error = %v", err)
	}
	if !updated.DailyTasks[0].Completed {
		t.Fatal("title edit should keep the existing plan")
	}

	in.Pages = 20
	updated, err = svc.UpdateHomework(ctx, in)
	if err != nil {
		t.Fatalf("UpdateHomework() error = %v", err)
	}
	if updated.DailyTasks[0].Completed || updated.DailyTasks[0].Pages != 4 {
		t.Fatalf("expected regenerated plan, got %#v", updated.DailyTasks)
	}

	if _, err := svc.UpdateHomework(ctx, UpdateHomeworkInput{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleDayTaskCompletesItem(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)
	h := createSample(t, svc)
	ctx := context.Background()

	var err error
	for _, task := range h.DailyTasks {
		h, err = svc.ToggleDayTask(ctx, h.ID, task.Date)
		if err != nil {
			t.Fatalf("ToggleDayTask(%s) error = %v", task.Date, err)
		}
	}
	if !h.Completed || domain.Progress(h) != 100 {
		t.Fatalf("expected completed item, got completed=%v progress=%v", h.Completed, domain.Progress(h))
	}
	if _, err := svc.ToggleDayTask(ctx, h.ID, "2024-04-01"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestToggleHomeworkComplete(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)
	h := createSample(t, svc)

	h, err := svc.ToggleHomeworkComplete(context.Background(), h.ID)
	if err != nil {
		t.Fatalf("ToggleHomeworkComplete() error = %v", err)
	}
	if !h.Completed || !repo.homework[h.ID].DailyTasks[4].Completed {
		t.Fatal("expected every day completed")
	}
}

func TestStartSessionRollsMissedWork(t *testing.T) {
	repo := newFakeRepo()
	svc, clock := newTestService(repo)
	h := createSample(t, svc)
	ctx := context.Background()

	changed, err := svc.StartSession(ctx)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if changed != 0 || repo.replaceCalls != 0 {
		t.Fatalf("expected no-op session, got changed=%d replace=%d", changed, repo.replaceCalls)
	}

	clock.advanceDays(2)
	changed, err = svc.StartSession(ctx)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if changed != 1 || repo.replaceCalls != 1 {
		t.Fatalf("expected one rescheduled item, got changed=%d replace=%d", changed, repo.replaceCalls)
	}
	got := repo.homework[h.ID].DailyTasks
	if got[0].Pages != 0 || got[1].Pages != 0 || got[2].Pages != 4 || got[4].Minutes != 34 {
		t.Fatalf("unexpected rescheduled plan %#v", got)
	}

	if changed, err = svc.StartSession(ctx); err != nil || changed != 0 {
		t.Fatalf("second session should be a no-op, got %d %v", changed, err)
	}
}

func TestUpdateGlobalScheduleReschedules(t *testing.T) {
	repo := newFakeRepo()
	svc, clock := newTestService(repo)
	h := createSample(t, svc)
	clock.advanceDays(1)

	schedule, err := svc.UpdateGlobalSchedule(context.Background(), domain.GlobalSchedule{
		BlockedDates: []domain.Day{"2024-03-04", "2024-03-03", "2024-03-04"},
	})
	if err != nil {
		t.Fatalf("UpdateGlobalSchedule() error = %v", err)
	}
	if !slices.Equal(schedule.BlockedDates, []domain.Day{"2024-03-03", "2024-03-04"}) {
		t.Fatalf("unexpected stored schedule %v", schedule.BlockedDates)
	}
	got := repo.homework[h.ID].DailyTasks
	// missed 03-01 rolls onto the open days; blocked 03-03 and 03-04 keep their share
	want := []int{0, 3, 2, 2, 3}
	for i, task := range got {
		if task.Pages != want[i] {
			t.Fatalf("unexpected plan %#v", got)
		}
	}

	if _, err := svc.UpdateGlobalSchedule(context.Background(), domain.GlobalSchedule{BlockedWeekdays: []time.Weekday{9}}); !errors.Is(err, domain.ErrInvalidWeekday) {
		t.Fatalf("expected ErrInvalidWeekday, got %v", err)
	}
}

func TestNotificationSettingsDefaultsAndReminders(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	settings, err := svc.GetNotificationSettings(ctx)
	if err != nil {
		t.Fatalf("GetNotificationSettings() error = %v", err)
	}
	if settings.Enabled || !slices.Equal(settings.ReminderDays, []int{1, 3}) || settings.ReminderTime != "18:00" {
		t.Fatalf("unexpected defaults %#v", settings)
	}

	if _, err := svc.CreateHomework(ctx, CreateHomeworkInput{Subject: "Art", Title: "Sketch", DueDate: "2024-03-04", Pages: 3}); err != nil {
		t.Fatalf("CreateHomework() error = %v", err)
	}
	settings.Enabled = true
	if _, err := svc.UpdateNotificationSettings(ctx, settings); err != nil {
		t.Fatalf("UpdateNotificationSettings() error = %v", err)
	}
	reminders, err := svc.Reminders(ctx)
	if err != nil {
		t.Fatalf("Reminders() error = %v", err)
	}
	if len(reminders) != 1 || reminders[0].DaysLeft != 3 {
		t.Fatalf("unexpected reminders %#v", reminders)
	}

	settings.ReminderTime = "nope"
	if _, err := svc.UpdateNotificationSettings(ctx, settings); !errors.Is(err, domain.ErrInvalidReminderTime) {
		t.Fatalf("expected ErrInvalidReminderTime, got %v", err)
	}
}

func TestViewsThroughService(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)
	h := createSample(t, svc)
	ctx := context.Background()

	today, err := svc.TodayTasks(ctx)
	if err != nil {
		t.Fatalf("TodayTasks() error = %v", err)
	}
	if len(today) != 1 || today[0].Homework.ID != h.ID || today[0].Task.Date != "2024-03-01" {
		t.Fatalf("unexpected today %#v", today)
	}

	days, err := svc.Calendar(ctx, "", 10)
	if err != nil {
		t.Fatalf("Calendar() error = %v", err)
	}
	if len(days) != 10 || len(days[4].Tasks) != 1 || len(days[5].Tasks) != 0 || len(days[9].Deadlines) != 1 {
		t.Fatalf("unexpected calendar %#v", days)
	}
	if _, err := svc.Calendar(ctx, "03/01", 1); !errors.Is(err, domain.ErrInvalidDay) {
		t.Fatalf("expected ErrInvalidDay, got %v", err)
	}

	upcoming, err := svc.UpcomingDeadlines(ctx)
	if err != nil {
		t.Fatalf("UpcomingDeadlines() error = %v", err)
	}
	if len(upcoming) != 0 {
		t.Fatalf("due date nine days out should not be upcoming, got %#v", upcoming)
	}

	if err := svc.DeleteHomework(ctx, h.ID); err != nil {
		t.Fatalf("DeleteHomework() error = %v", err)
	}
	if _, err := svc.GetHomework(ctx, h.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
