package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanschultz/hwplan/internal/app"
	"github.com/evanschultz/hwplan/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Settings keys.
const (
	settingGlobalSchedule = "global_schedule"
	settingNotifications  = "notification_settings"
)

// Repository represents repository data used by this package.
type Repository struct {
	db *sql.DB
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// every pooled connection would otherwise see its own empty database
	db.SetMaxOpenConns(1)
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping reports whether the database answers.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS homework (
			id TEXT PRIMARY KEY,
			subject TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			due_date TEXT NOT NULL,
			target_date TEXT NOT NULL,
			pages INTEGER NOT NULL DEFAULT 0,
			estimated_minutes INTEGER NOT NULL DEFAULT 0,
			blocked_dates_json TEXT NOT NULL DEFAULT '[]',
			completed INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS day_tasks (
			homework_id TEXT NOT NULL,
			date TEXT NOT NULL,
			pages INTEGER NOT NULL DEFAULT 0,
			minutes INTEGER NOT NULL DEFAULT 0,
			completed INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY(homework_id, date)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_day_tasks_date ON day_tasks(date);`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value_json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// CreateHomework creates homework.
func (r *Repository) CreateHomework(ctx context.Context, h domain.Homework) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = insertHomework(ctx, tx, h); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

// UpdateHomework updates state for the requested operation.
func (r *Repository) UpdateHomework(ctx context.Context, h domain.Homework) (err error) {
	blockedJSON, err := encodeDays(h.BlockedDates)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE homework
		SET subject = ?, title = ?, content = ?, due_date = ?, target_date = ?, pages = ?,
			estimated_minutes = ?, blocked_dates_json = ?, completed = ?, updated_at = ?
		WHERE id = ?
	`, h.Subject, h.Title, h.Content, string(h.DueDate), string(h.TargetDate), h.Pages,
		h.EstimatedMinutes, blockedJSON, boolInt(h.Completed), ts(h.UpdatedAt), h.ID)
	if err != nil {
		return err
	}
	if err = translateNoRows(res); err != nil {
		return err
	}
	if err = writeDayTasks(ctx, tx, h.ID, h.DailyTasks); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

// GetHomework returns homework.
func (r *Repository) GetHomework(ctx context.Context, id string) (domain.Homework, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, subject, title, content, due_date, target_date, pages, estimated_minutes,
			blocked_dates_json, completed, created_at, updated_at
		FROM homework
		WHERE id = ?
	`, id)
	h, err := scanHomework(row)
	if err != nil {
		return domain.Homework{}, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT homework_id, date, pages, minutes, completed
		FROM day_tasks
		WHERE homework_id = ?
		ORDER BY date ASC
	`, id)
	if err != nil {
		return domain.Homework{}, err
	}
	defer rows.Close()
	for rows.Next() {
		_, task, err := scanDayTask(rows)
		if err != nil {
			return domain.Homework{}, err
		}
		h.DailyTasks = append(h.DailyTasks, task)
	}
	return h, rows.Err()
}

// ListHomework lists homework ordered by due date.
func (r *Repository) ListHomework(ctx context.Context) ([]domain.Homework, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, subject, title, content, due_date, target_date, pages, estimated_minutes,
			blocked_dates_json, completed, created_at, updated_at
		FROM homework
		ORDER BY due_date ASC, created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Homework, 0)
	index := map[string]int{}
	for rows.Next() {
		h, err := scanHomework(rows)
		if err != nil {
			return nil, err
		}
		index[h.ID] = len(out)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	taskRows, err := r.db.QueryContext(ctx, `
		SELECT homework_id, date, pages, minutes, completed
		FROM day_tasks
		ORDER BY homework_id ASC, date ASC
	`)
	if err != nil {
		return nil, err
	}
	defer taskRows.Close()
	for taskRows.Next() {
		homeworkID, task, err := scanDayTask(taskRows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[homeworkID]; ok {
			out[i].DailyTasks = append(out[i].DailyTasks, task)
		}
	}
	return out, taskRows.Err()
}

// DeleteHomework deletes homework and its plan.
func (r *Repository) DeleteHomework(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM homework WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err = translateNoRows(res); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM day_tasks WHERE homework_id = ?`, id); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

// ReplaceHomework swaps the full homework collection in one transaction.
func (r *Repository) ReplaceHomework(ctx context.Context, items []domain.Homework) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM day_tasks`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM homework`); err != nil {
		return err
	}
	for _, h := range items {
		if err = insertHomework(ctx, tx, h); err != nil {
			return fmt.Errorf("replace homework %s: %w", h.ID, err)
		}
	}
	err = tx.Commit()
	return err
}

// scheduleRecord is the stored JSON form of the global schedule.
type scheduleRecord struct {
	BlockedDates    []string `json:"blocked_dates"`
	BlockedWeekdays []int    `json:"blocked_weekdays"`
}

// notificationRecord is the stored JSON form of notification settings.
type notificationRecord struct {
	Enabled       bool   `json:"enabled"`
	ReminderDays  []int  `json:"reminder_days"`
	DailyReminder bool   `json:"daily_reminder"`
	ReminderTime  string `json:"reminder_time"`
}

// GetGlobalSchedule returns the stored global schedule.
func (r *Repository) GetGlobalSchedule(ctx context.Context) (domain.GlobalSchedule, error) {
	var rec scheduleRecord
	if err := r.getSetting(ctx, settingGlobalSchedule, &rec); err != nil {
		return domain.GlobalSchedule{}, err
	}
	out := domain.GlobalSchedule{}
	for _, d := range rec.BlockedDates {
		out.BlockedDates = append(out.BlockedDates, domain.Day(d))
	}
	for _, wd := range rec.BlockedWeekdays {
		out.BlockedWeekdays = append(out.BlockedWeekdays, time.Weekday(wd))
	}
	return out, nil
}

// SaveGlobalSchedule stores the global schedule.
func (r *Repository) SaveGlobalSchedule(ctx context.Context, s domain.GlobalSchedule) error {
	rec := scheduleRecord{BlockedDates: []string{}, BlockedWeekdays: []int{}}
	for _, d := range s.BlockedDates {
		rec.BlockedDates = append(rec.BlockedDates, string(d))
	}
	for _, wd := range s.BlockedWeekdays {
		rec.BlockedWeekdays = append(rec.BlockedWeekdays, int(wd))
	}
	return r.putSetting(ctx, settingGlobalSchedule, rec)
}

// GetNotificationSettings returns the stored notification settings.
func (r *Repository) GetNotificationSettings(ctx context.Context) (domain.NotificationSettings, error) {
	var rec notificationRecord
	if err := r.getSetting(ctx, settingNotifications, &rec); err != nil {
		return domain.NotificationSettings{}, err
	}
	return domain.NotificationSettings{
		Enabled:       rec.Enabled,
		ReminderDays:  rec.ReminderDays,
		DailyReminder: rec.DailyReminder,
		ReminderTime:  rec.ReminderTime,
	}, nil
}

// SaveNotificationSettings stores notification settings.
func (r *Repository) SaveNotificationSettings(ctx context.Context, s domain.NotificationSettings) error {
	rec := notificationRecord{
		Enabled:       s.Enabled,
		ReminderDays:  append([]int{}, s.ReminderDays...),
		DailyReminder: s.DailyReminder,
		ReminderTime:  s.ReminderTime,
	}
	return r.putSetting(ctx, settingNotifications, rec)
}

func (r *Repository) getSetting(ctx context.Context, key string, dst any) error {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT value_json FROM settings WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return app.ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode setting %s: %w", key, err)
	}
	return nil
}

func (r *Repository) putSetting(ctx context.Context, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings(key, value_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json, updated_at = excluded.updated_at
	`, key, string(encoded), ts(time.Now()))
	return err
}

// execerContext represents a write-only DB contract used by DB and Tx implementations.
type execerContext interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}

func insertHomework(ctx context.Context, execer execerContext, h domain.Homework) error {
	blockedJSON, err := encodeDays(h.BlockedDates)
	if err != nil {
		return err
	}
	_, err = execer.ExecContext(ctx, `
		INSERT INTO homework(id, subject, title, content, due_date, target_date, pages, estimated_minutes,
			blocked_dates_json, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, h.ID, h.Subject, h.Title, h.Content, string(h.DueDate), string(h.TargetDate), h.Pages, h.EstimatedMinutes,
		blockedJSON, boolInt(h.Completed), ts(h.CreatedAt), ts(h.UpdatedAt))
	if err != nil {
		return err
	}
	return writeDayTasks(ctx, execer, h.ID, h.DailyTasks)
}

// writeDayTasks replaces the stored plan of one homework item.
func writeDayTasks(ctx context.Context, execer execerContext, homeworkID string, tasks []domain.DayTask) error {
	if _, err := execer.ExecContext(ctx, `DELETE FROM day_tasks WHERE homework_id = ?`, homeworkID); err != nil {
		return err
	}
	for _, t := range tasks {
		if _, err := execer.ExecContext(ctx, `
			INSERT INTO day_tasks(homework_id, date, pages, minutes, completed)
			VALUES (?, ?, ?, ?, ?)
		`, homeworkID, string(t.Date), t.Pages, t.Minutes, boolInt(t.Completed)); err != nil {
			return fmt.Errorf("insert day task %s: %w", t.Date, err)
		}
	}
	return nil
}

// scanner represents scanner data used by this package.
type scanner interface {
	Scan(dest ...any) error
}

// scanHomework handles scan homework.
func scanHomework(s scanner) (domain.Homework, error) {
	var (
		h          domain.Homework
		due        string
		target     string
		blockedRaw string
		completed  int
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(&h.ID, &h.Subject, &h.Title, &h.Content, &due, &target, &h.Pages, &h.EstimatedMinutes,
		&blockedRaw, &completed, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Homework{}, app.ErrNotFound
		}
		return domain.Homework{}, err
	}
	blocked, err := decodeDays(blockedRaw)
	if err != nil {
		return domain.Homework{}, fmt.Errorf("decode homework blocked_dates_json: %w", err)
	}
	h.DueDate = domain.Day(due)
	h.TargetDate = domain.Day(target)
	h.BlockedDates = blocked
	h.Completed = completed != 0
	h.CreatedAt = parseTS(createdRaw)
	h.UpdatedAt = parseTS(updatedRaw)
	return h, nil
}

func scanDayTask(s scanner) (string, domain.DayTask, error) {
	var (
		homeworkID string
		date       string
		task       domain.DayTask
		completed  int
	)
	if err := s.Scan(&homeworkID, &date, &task.Pages, &task.Minutes, &completed); err != nil {
		return "", domain.DayTask{}, err
	}
	task.Date = domain.Day(date)
	task.Completed = completed != 0
	return homeworkID, task, nil
}

func encodeDays(days []domain.Day) (string, error) {
	raw := make([]string, 0, len(days))
	for _, d := range days {
		raw = append(raw, string(d))
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("encode days: %w", err)
	}
	return string(encoded), nil
}

func decodeDays(raw string) ([]domain.Day, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var days []string
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, nil
	}
	out := make([]domain.Day, 0, len(days))
	for _, d := range days {
		out = append(out, domain.Day(d))
	}
	return out, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// translateNoRows handles translate no rows.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}
