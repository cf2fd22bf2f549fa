package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// NotificationSettings control which reminders are computed.
type NotificationSettings struct {
	Enabled       bool
	ReminderDays  []int
	DailyReminder bool
	ReminderTime  string
}

// DefaultNotificationSettings returns disabled reminders at one and three days out.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Enabled:      false,
		ReminderDays: []int{1, 3},
		ReminderTime: "18:00",
	}
}

// Normalize validates settings and sorts reminder days.
func (s NotificationSettings) Normalize() (NotificationSettings, error) {
	s.ReminderTime = strings.TrimSpace(s.ReminderTime)
	if s.ReminderTime == "" {
		s.ReminderTime = DefaultNotificationSettings().ReminderTime
	}
	if _, err := time.Parse("15:04", s.ReminderTime); err != nil {
		return NotificationSettings{}, ErrInvalidReminderTime
	}
	days := make([]int, 0, len(s.ReminderDays))
	for _, d := range s.ReminderDays {
		if d < 0 {
			return NotificationSettings{}, ErrInvalidReminderDays
		}
		if !slices.Contains(days, d) {
			days = append(days, d)
		}
	}
	slices.Sort(days)
	s.ReminderDays = days
	return s, nil
}

type ReminderKind string

const (
	ReminderDue   ReminderKind = "due"
	ReminderDaily ReminderKind = "daily"
)

// Reminder is a computed notice. Delivery is up to the caller.
type Reminder struct {
	Kind       ReminderKind
	HomeworkID string
	DaysLeft   int
	Message    string
}

// DueReminders computes the reminders that apply on today.
func DueReminders(items []Homework, settings NotificationSettings, today Day) []Reminder {
	if !settings.Enabled {
		return nil
	}
	var out []Reminder
	for _, h := range items {
		if h.Completed {
			continue
		}
		left := today.DaysUntil(h.DueDate)
		if !slices.Contains(settings.ReminderDays, left) {
			continue
		}
		out = append(out, Reminder{
			Kind:       ReminderDue,
			HomeworkID: h.ID,
			DaysLeft:   left,
			Message:    fmt.Sprintf("%s: %s is due in %d day(s)", h.Subject, h.Title, left),
		})
	}
	if settings.DailyReminder {
		open := 0
		for _, e := range TasksOn(items, today, false) {
			if !e.Task.Completed && e.Task.HasWork() {
				open++
			}
		}
		if open > 0 {
			out = append(out, Reminder{
				Kind:    ReminderDaily,
				Message: fmt.Sprintf("%d task(s) planned for today at %s", open, settings.ReminderTime),
			})
		}
	}
	return out
}
