package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"feed_digest/internal/ai"
	"feed_digest/internal/config"
	"feed_digest/internal/digest"
	"feed_digest/internal/domain"
	"feed_digest/internal/publisher"
	"feed_digest/internal/push"
	"feed_digest/internal/scheduler"
	"feed_digest/internal/service"
	"feed_digest/internal/source/miniflux"
	"feed_digest/internal/storage/postgres"
	"feed_digest/internal/storage/shard"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	runUser := flag.String("run", "", "run one task for this user now and exit")
	runTask := flag.String("task", "", "task id for -run")
	statusUser := flag.String("status", "", "print the task run history of this user and exit")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	prefsStore := postgres.NewPreferencesStore(db)
	runStore := postgres.NewTaskRunStore(db)
	txManager := postgres.NewTransactionManager(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *statusUser != "" {
		if err := printStatus(ctx, prefsStore, runStore, *statusUser); err != nil {
			logger.Error("status failed", "error", err)
			os.Exit(1)
		}
		return
	}

	storeLoc, _ := config.Location(cfg.Storage.Timezone)
	digestStore, err := shard.NewStore(shard.Config{
		Dir:      cfg.Storage.DigestDir,
		Location: storeLoc,
	}, logger)
	if err != nil {
		logger.Error("failed to open digest store", "error", err)
		os.Exit(1)
	}

	minifluxClient := miniflux.New(miniflux.Config{
		BaseURL:        cfg.Miniflux.BaseURL,
		APIToken:       cfg.Miniflux.APIToken,
		Timeout:        cfg.Miniflux.Timeout,
		MaxAttempts:    cfg.Miniflux.Retry.MaxAttempts,
		InitialBackoff: cfg.Miniflux.Retry.InitialBackoff,
		MaxBackoff:     cfg.Miniflux.Retry.MaxBackoff,
	}, logger)

	aiClient := ai.NewClient(cfg.AI.Timeout, cfg.AI.DefaultModel, logger)
	generator := digest.NewGenerator(aiClient, digestStore, logger)
	dispatcher := push.NewDispatcher(push.Config{
		Timeout:    cfg.Push.Timeout,
		ChunkDelay: cfg.Push.ChunkDelay,
	}, logger)

	var events service.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		events = rabbitMQ
	}

	runner := service.NewRunner(
		miniflux.NewProvider(minifluxClient),
		generator,
		dispatcher,
		events,
		runStore,
		logger,
	)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if *runUser != "" {
		if err := runNow(ctx, prefsStore, runner, *runUser, *runTask); err != nil {
			logger.Error("run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	schedLoc, _ := config.Location(cfg.Scheduler.Timezone)
	sched := scheduler.NewScheduler(prefsStore, txManager, runner, scheduler.Config{
		InitialDelay:      cfg.Scheduler.InitialDelay,
		Interval:          cfg.Scheduler.Interval,
		MaxConcurrent:     cfg.Scheduler.MaxConcurrent,
		Location:          schedLoc,
		DisableStaleTasks: cfg.Scheduler.DisableStaleTasks,
		RunTimeout:        cfg.Scheduler.RunTimeout,
	}, logger)

	logger.Info("starting digest scheduler",
		"interval", cfg.Scheduler.Interval,
		"max_concurrent", cfg.Scheduler.MaxConcurrent,
		"digest_dir", cfg.Storage.DigestDir,
		"publish_events", cfg.RabbitMQ.Enabled,
	)

	err = sched.Start(ctx)
	sched.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

// runNow runs one task immediately, skipping the target check and pushing
// whenever a webhook is configured.
func runNow(ctx context.Context, prefsStore *postgres.PreferencesStore, runner *service.Runner, userID, taskID string) error {
	prefs, err := loadPreferences(ctx, prefsStore, userID)
	if err != nil {
		return err
	}

	task, ok := findTask(prefs.Schedules, taskID)
	if !ok {
		return fmt.Errorf("task %q not found for user %q", taskID, userID)
	}

	result := runner.RunTask(ctx, userID, task, prefs, service.RunOptions{Force: true, ForcePush: true})
	if err := printJSON(runReport(result)); err != nil {
		return err
	}
	return result.Err
}

func printStatus(ctx context.Context, prefsStore *postgres.PreferencesStore, runStore *postgres.TaskRunStore, userID string) error {
	prefs, err := loadPreferences(ctx, prefsStore, userID)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(prefs.Schedules))
	for _, task := range prefs.Schedules {
		ids = append(ids, task.ID)
	}

	runs, err := runStore.List(ctx, userID, ids)
	if err != nil {
		return fmt.Errorf("list task runs: %w", err)
	}
	return printJSON(runs)
}

// loadPreferences decodes a user's preferences without writing back the
// schedule migration; the scheduler persists it on its next check.
func loadPreferences(ctx context.Context, prefsStore *postgres.PreferencesStore, userID string) (domain.Preferences, error) {
	raw, err := prefsStore.Get(ctx, userID)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}
	if _, err := service.MigrateLegacySchedule(raw); err != nil {
		return domain.Preferences{}, fmt.Errorf("migrate schedule: %w", err)
	}
	return service.DecodePreferences(raw)
}

func findTask(tasks []domain.ScheduledTask, id string) (domain.ScheduledTask, bool) {
	for _, task := range tasks {
		if task.ID == id {
			return task, true
		}
	}
	// A single task may be addressed without its id.
	if id == "" && len(tasks) == 1 {
		return tasks[0], true
	}
	return domain.ScheduledTask{}, false
}

type report struct {
	Success bool                `json:"success"`
	Error   string              `json:"error,omitempty"`
	Digest  *domain.Digest      `json:"digest,omitempty"`
	Push    *service.PushResult `json:"push,omitempty"`
}

func runReport(result service.Result) report {
	r := report{Success: result.Success, Digest: result.Digest, Push: result.Push}
	if result.Err != nil {
		r.Error = result.Err.Error()
	}
	return r
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}
