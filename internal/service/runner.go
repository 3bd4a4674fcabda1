package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"feed_digest/internal/digest"
	"feed_digest/internal/domain"
)

var (
	ErrFeedAPIUnavailable = errors.New("miniflux unavailable")
	ErrTargetNotFound     = errors.New("feed/group not found")
)

type RunOptions struct {
	// Force skips the target existence check ("run now").
	Force bool
	// ForcePush pushes even when the task has push disabled.
	ForcePush bool
}

type PushResult struct {
	Attempted bool   `json:"attempted"`
	Success   bool   `json:"success"`
	Status    int    `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Result is the outcome of one task run. A failed push never flips
// Success: it is reported in Push only.
type Result struct {
	Success  bool
	Digest   *domain.Digest
	Push     *PushResult
	Err      error
	NotFound bool
}

type Runner struct {
	feeds     FeedAPIProvider
	generator Generator
	pusher    Pusher
	publisher Publisher
	runs      TaskRunStore
	logger    *slog.Logger
	now       func() time.Time
}

// NewRunner wires a task runner. publisher and runs may be nil.
func NewRunner(
	feeds FeedAPIProvider,
	generator Generator,
	pusher Pusher,
	publisher Publisher,
	runs TaskRunStore,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		feeds:     feeds,
		generator: generator,
		pusher:    pusher,
		publisher: publisher,
		runs:      runs,
		logger:    logger.With("component", "runner"),
		now:       time.Now,
	}
}

// RunTask generates one digest for task and pushes it when asked to.
// It never returns an error: every failure is described by the Result.
func (r *Runner) RunTask(ctx context.Context, userID string, task domain.ScheduledTask, prefs domain.Preferences, opts RunOptions) Result {
	logger := r.logger.With("user_id", userID, "task_id", task.ID, "scope", task.Scope.Kind)

	result := r.run(ctx, logger, userID, task, prefs, opts)

	if result.Success {
		logger.Info("task completed", "digest_id", result.Digest.ID, "articles", result.Digest.ArticleCount)
		r.publish(ctx, logger, userID, task.ID, result.Digest)
	} else {
		logger.Warn("task failed", "error", result.Err, "not_found", result.NotFound)
	}

	r.record(ctx, logger, userID, task.ID, result)

	return result
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger, userID string, task domain.ScheduledTask, prefs domain.Preferences, opts RunOptions) Result {
	if prefs.AI.APIKey == "" {
		return Result{Err: digest.ErrAINotConfigured}
	}

	api, err := r.feeds.ForUser(ctx, userID)
	if err != nil {
		return Result{Err: fmt.Errorf("%w: %v", ErrFeedAPIUnavailable, err)}
	}
	if api == nil {
		return Result{Err: ErrFeedAPIUnavailable}
	}

	if !opts.Force {
		if err := verifyTarget(ctx, api, task.Scope); err != nil {
			return Result{Err: err, NotFound: errors.Is(err, ErrTargetNotFound)}
		}
	}

	d, err := r.generator.Generate(ctx, api, userID, digest.Options{
		Scope:       task.Scope,
		Hours:       task.Hours,
		TargetLang:  prefs.AI.TargetLang,
		AI:          prefs.AI,
		Prompt:      prefs.AI.DigestPrompt,
		IncludeRead: !task.UnreadOnly,
		Timezone:    prefs.Timezone,
	})
	if err != nil {
		return Result{Err: err}
	}

	result := Result{Success: true, Digest: d}

	if (task.PushEnabled || opts.ForcePush) && prefs.Push != nil && prefs.Push.URL != "" {
		result.Push = r.push(ctx, logger, *prefs.Push, d)
	}

	return result
}

// verifyTarget checks that the task's feed or category still exists.
func verifyTarget(ctx context.Context, api digest.FeedAPI, scope domain.Scope) error {
	switch scope.Kind {
	case domain.ScopeFeed:
		if _, err := api.GetFeed(ctx, scope.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: feed %d", ErrTargetNotFound, scope.ID)
			}
			return fmt.Errorf("verify feed: %w", err)
		}
	case domain.ScopeGroup:
		categories, err := api.GetCategories(ctx)
		if err != nil {
			return fmt.Errorf("verify group: %w", err)
		}
		for _, c := range categories {
			if c.ID == scope.ID {
				return nil
			}
		}
		return fmt.Errorf("%w: group %d", ErrTargetNotFound, scope.ID)
	}
	return nil
}

func (r *Runner) push(ctx context.Context, logger *slog.Logger, cfg domain.PushConfig, d *domain.Digest) *PushResult {
	result := &PushResult{Attempted: true}

	resp, err := r.pusher.Send(ctx, cfg, d.Title, d.Content)
	if err != nil {
		logger.Warn("push failed", "error", err)
		result.Error = err.Error()
		return result
	}

	result.Status = resp.Status
	result.Success = resp.OK
	if !resp.OK {
		result.Error = fmt.Sprintf("webhook returned status %d", resp.Status)
	}
	return result
}

func (r *Runner) publish(ctx context.Context, logger *slog.Logger, userID, taskID string, d *domain.Digest) {
	if r.publisher == nil || !d.Persisted() {
		return
	}

	err := r.publisher.PublishDigest(ctx, domain.DigestEvent{
		Action:    domain.DigestActionCreated,
		UserID:    userID,
		TaskID:    taskID,
		Digest:    *d,
		Timestamp: r.now().UTC(),
	})
	if err != nil {
		logger.Error("failed to publish digest event", "digest_id", d.ID, "error", err)
	}
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, userID, taskID string, result Result) {
	if r.runs == nil || taskID == "" {
		return
	}

	run, err := r.runs.Get(ctx, userID, taskID)
	if err != nil {
		logger.Error("failed to load task run", "error", err)
		return
	}

	run.UserID = userID
	run.TaskID = taskID
	run.LastRunAt = r.now()
	run.TotalRuns++
	run.LastError = ""
	run.LastPushStatus = 0

	switch {
	case result.Success:
		run.LastStatus = domain.RunStatusSuccess
		run.LastDigestID = result.Digest.ID
	case result.NotFound:
		run.LastStatus = domain.RunStatusSkipped
	default:
		run.LastStatus = domain.RunStatusFailed
	}
	if result.Err != nil {
		run.LastError = result.Err.Error()
	}
	if result.Push != nil {
		run.LastPushStatus = result.Push.Status
	}

	if err := r.runs.Update(ctx, run); err != nil {
		logger.Error("failed to record task run", "error", err)
	}
}
