package scheduler

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"feed_digest/internal/domain"
	"feed_digest/internal/service"
)

type PreferencesStore interface {
	UserIDs(ctx context.Context) ([]string, error)
	Get(ctx context.Context, userID string) (domain.RawPreferences, error)
	Save(ctx context.Context, userID string, prefs domain.RawPreferences) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type TaskRunner interface {
	RunTask(ctx context.Context, userID string, task domain.ScheduledTask, prefs domain.Preferences, opts service.RunOptions) service.Result
}
