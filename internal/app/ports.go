package app

import (
	"context"

	"github.com/evanschultz/hwplan/internal/domain"
)

// Repository persists homework items and user-wide settings.
// Get methods return ErrNotFound when nothing is stored.
type Repository interface {
	CreateHomework(context.Context, domain.Homework) error
	UpdateHomework(context.Context, domain.Homework) error
	GetHomework(context.Context, string) (domain.Homework, error)
	ListHomework(context.Context) ([]domain.Homework, error)
	DeleteHomework(context.Context, string) error
	// ReplaceHomework atomically replaces the full homework collection.
	ReplaceHomework(context.Context, []domain.Homework) error

	GetGlobalSchedule(context.Context) (domain.GlobalSchedule, error)
	SaveGlobalSchedule(context.Context, domain.GlobalSchedule) error
	GetNotificationSettings(context.Context) (domain.NotificationSettings, error)
	SaveNotificationSettings(context.Context, domain.NotificationSettings) error
}
