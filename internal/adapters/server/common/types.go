// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports a missing homework item or day allocation.
var ErrNotFound = errors.New("not found")

// ErrUnavailable reports a server that was started without a planner.
var ErrUnavailable = errors.New("planner unavailable")

// PlannerService is the read and toggle surface exposed over HTTP and MCP.
type PlannerService interface {
	Today(context.Context) (TodayView, error)
	ListHomework(context.Context) ([]HomeworkView, error)
	GetHomework(context.Context, string) (HomeworkView, error)
	ToggleHomework(context.Context, string) (HomeworkView, error)
	ToggleDayTask(context.Context, string, string) (HomeworkView, error)
	Deadlines(context.Context) ([]DeadlineView, error)
	CalendarDay(context.Context, string) (CalendarDayView, error)
}

// DayTaskView is one day allocation on the wire.
type DayTaskView struct {
	Date      string `json:"date"`
	Pages     int    `json:"pages"`
	Minutes   int    `json:"minutes"`
	Completed bool   `json:"completed"`
}

// HomeworkView is one homework item with its derived progress.
type HomeworkView struct {
	ID               string        `json:"id"`
	Subject          string        `json:"subject"`
	Title            string        `json:"title"`
	Content          string        `json:"content,omitempty"`
	DueDate          string        `json:"due_date"`
	TargetDate       string        `json:"target_date"`
	Pages            int           `json:"pages"`
	EstimatedMinutes int           `json:"estimated_minutes"`
	BlockedDates     []string      `json:"blocked_dates,omitempty"`
	Completed        bool          `json:"completed"`
	Overdue          bool          `json:"overdue"`
	Progress         float64       `json:"progress"`
	DailyTasks       []DayTaskView `json:"daily_tasks"`
}

// DayEntryView is one homework allocation listed under a date.
type DayEntryView struct {
	HomeworkID string      `json:"homework_id"`
	Subject    string      `json:"subject"`
	Title      string      `json:"title"`
	DueDate    string      `json:"due_date"`
	Progress   float64     `json:"progress"`
	Task       DayTaskView `json:"task"`
}

// TodayView lists today's allocations.
type TodayView struct {
	Date  string         `json:"date"`
	Tasks []DayEntryView `json:"tasks"`
}

// DeadlineView is one upcoming or overdue deadline.
type DeadlineView struct {
	HomeworkID string  `json:"homework_id"`
	Subject    string  `json:"subject"`
	Title      string  `json:"title"`
	DueDate    string  `json:"due_date"`
	DaysLeft   int     `json:"days_left"`
	Overdue    bool    `json:"overdue"`
	Progress   float64 `json:"progress"`
}

// CalendarDayView is the planned work and the deadlines of one date.
type CalendarDayView struct {
	Date      string         `json:"date"`
	Tasks     []DayEntryView `json:"tasks"`
	Deadlines []DeadlineView `json:"deadlines"`
}
