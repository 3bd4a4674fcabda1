package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"feed_digest/internal/domain"
	"feed_digest/internal/service"
)

const (
	DefaultInitialDelay  = 10 * time.Second
	DefaultInterval      = time.Minute
	DefaultMaxConcurrent = 4
	DefaultRunTimeout    = 5 * time.Minute

	clockLayout = "15:04"
)

type Config struct {
	InitialDelay  time.Duration
	Interval      time.Duration
	MaxConcurrent int64
	// Location is used for users without a valid digest timezone.
	Location *time.Location
	// DisableStaleTasks switches off tasks whose feed or group is gone.
	DisableStaleTasks bool
	RunTimeout        time.Duration
}

// Scheduler checks every user's digest tasks once per interval and runs
// the ones due this minute. A task fires only in the minute matching its
// configured time: a minute missed while the process was down is not
// caught up.
type Scheduler struct {
	prefs  PreferencesStore
	tx     TransactionManager
	runner TaskRunner
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	sem      *semaphore.Weighted
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewScheduler(prefs PreferencesStore, tx TransactionManager, runner TaskRunner, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.InitialDelay < 0 {
		cfg.InitialDelay = 0
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = DefaultRunTimeout
	}

	return &Scheduler{
		prefs:  prefs,
		tx:     tx,
		runner: runner,
		cfg:    cfg,
		logger: logger.With("component", "scheduler"),
		now:    time.Now,
		sem:    semaphore.NewWeighted(cfg.MaxConcurrent),
		stopCh: make(chan struct{}),
	}
}

// Start blocks until ctx is done or Stop is called. The next check is
// scheduled only after the previous one returns, so checks never overlap.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started",
		"initial_delay", s.cfg.InitialDelay,
		"interval", s.cfg.Interval,
		"max_concurrent", s.cfg.MaxConcurrent,
	)

	timer := time.NewTimer(s.cfg.InitialDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-s.stopCh:
			s.logger.Info("scheduler stopped")
			return nil
		case <-timer.C:
			s.RunCheck(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Wait blocks until every dispatched run has finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// RunCheck dispatches every task due now and returns how many were
// dispatched. It does not wait for the runs.
func (s *Scheduler) RunCheck(ctx context.Context) int {
	userIDs, err := s.prefs.UserIDs(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return 0
	}

	dispatched := 0
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			break
		}

		n, err := s.checkUser(ctx, userID)
		if err != nil {
			s.logger.Error("schedule check failed", "user_id", userID, "error", err)
			continue
		}
		dispatched += n
	}

	if dispatched > 0 {
		s.logger.Info("dispatched digest tasks", "count", dispatched, "users", len(userIDs))
	}
	return dispatched
}

func (s *Scheduler) checkUser(ctx context.Context, userID string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	raw, err := s.loadPreferences(ctx, userID)
	if err != nil {
		return 0, err
	}

	prefs, err := service.DecodePreferences(raw)
	if err != nil {
		return 0, err
	}

	current := s.now().In(s.userLocation(prefs.Timezone)).Format(clockLayout)
	logger := s.logger.With("user_id", userID)

	for _, task := range prefs.Schedules {
		if !task.Enabled || task.Time != current {
			continue
		}
		if prefs.AI.APIKey == "" {
			logger.Warn("skipping due task, AI not configured", "task_id", task.ID)
			continue
		}

		s.dispatch(ctx, userID, task, prefs)
		n++
	}
	return n, nil
}

// loadPreferences reads the user's preferences and persists the legacy
// schedule migration before anything else looks at them.
func (s *Scheduler) loadPreferences(ctx context.Context, userID string) (domain.RawPreferences, error) {
	var raw domain.RawPreferences

	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		raw, err = s.prefs.Get(txCtx, userID)
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}
		if raw == nil {
			raw = domain.RawPreferences{}
		}

		changed, err := service.MigrateLegacySchedule(raw)
		if err != nil {
			return fmt.Errorf("migrate schedule: %w", err)
		}
		if !changed {
			return nil
		}

		if err := s.prefs.Save(txCtx, userID, raw); err != nil {
			return fmt.Errorf("save migrated preferences: %w", err)
		}
		s.logger.Info("migrated digest schedule", "user_id", userID)
		return nil
	})

	return raw, err
}

func (s *Scheduler) dispatch(ctx context.Context, userID string, task domain.ScheduledTask, prefs domain.Preferences) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if err := s.sem.Acquire(ctx, 1); err != nil {
			s.logger.Warn("task dropped", "user_id", userID, "task_id", task.ID, "error", err)
			return
		}
		defer s.sem.Release(1)

		runCtx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()

		result := s.runner.RunTask(runCtx, userID, task, prefs, service.RunOptions{})
		if result.NotFound && s.cfg.DisableStaleTasks {
			s.disableTask(ctx, userID, task.ID)
		}
	}()
}

func (s *Scheduler) disableTask(ctx context.Context, userID, taskID string) {
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		raw, err := s.prefs.Get(txCtx, userID)
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}

		found, err := service.DisableTask(raw, taskID)
		if err != nil || !found {
			return err
		}
		return s.prefs.Save(txCtx, userID, raw)
	})
	if err != nil {
		s.logger.Error("failed to disable stale task", "user_id", userID, "task_id", taskID, "error", err)
		return
	}
	s.logger.Info("disabled stale task", "user_id", userID, "task_id", taskID)
}

func (s *Scheduler) userLocation(timezone string) *time.Location {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err == nil {
			return loc
		}
	}
	return s.cfg.Location
}
