package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"feed_digest/internal/domain"
)

// ErrAINotConfigured is returned when a digest needs an AI call but the
// user has no API key.
var ErrAINotConfigured = errors.New("AI not configured")

const (
	DefaultHours      = 24
	DefaultTargetLang = "English"
)

type Options struct {
	Scope      domain.Scope
	Hours      int
	TargetLang string
	AI         domain.AIConfig
	Prompt     string
	// IncludeRead widens the window to entries already read. By default
	// only unread entries are summarized.
	IncludeRead bool
	Timezone    string
}

func (o Options) withDefaults() Options {
	if o.Hours <= 0 {
		o.Hours = DefaultHours
	}
	if o.TargetLang == "" {
		o.TargetLang = DefaultTargetLang
	}
	if o.Scope.Kind == "" {
		o.Scope = domain.AllScope()
	}
	return o
}

// Generator builds digests: it resolves the scope label, pulls candidate
// entries, asks the AI model for a summary and persists the result.
type Generator struct {
	completer Completer
	store     Store
	logger    *slog.Logger
	now       func() time.Time
}

func NewGenerator(completer Completer, store Store, logger *slog.Logger) *Generator {
	return &Generator{
		completer: completer,
		store:     store,
		logger:    logger.With("component", "digest"),
		now:       time.Now,
	}
}

// Generate builds one digest for userID. When nothing matches the window it
// returns an unsaved placeholder digest (empty ID) instead of an error.
func (g *Generator) Generate(ctx context.Context, api FeedAPI, userID string, opts Options) (*domain.Digest, error) {
	opts = opts.withDefaults()
	loc := location(opts.Timezone)
	text := textsFor(opts.TargetLang)
	logger := g.logger.With("user_id", userID, "scope", opts.Scope.Kind, "hours", opts.Hours)

	scopeName := g.resolveScopeName(ctx, api, opts.Scope, text, logger)

	entries, err := FetchContent(ctx, api, FetchOptions{
		Hours:      opts.Hours,
		Scope:      opts.Scope,
		UnreadOnly: !opts.IncludeRead,
		Now:        g.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch content: %w", err)
	}

	now := g.now()
	d := domain.Digest{
		Scope:       opts.Scope.Kind,
		ScopeID:     opts.Scope.IDPtr(),
		ScopeName:   scopeName,
		Title:       text.title(scopeName, now.In(loc)),
		Hours:       opts.Hours,
		GeneratedAt: now,
	}

	if len(entries) == 0 {
		logger.Info("no articles in window, skipping summary")
		d.Content = text.emptyContent(opts.Hours)
		return &d, nil
	}

	if opts.AI.APIKey == "" {
		return nil, ErrAINotConfigured
	}

	prompt := BuildPrompt(PrepareArticles(entries, loc), PromptOptions{
		TargetLang:     opts.TargetLang,
		ScopeLabel:     scopeName,
		CustomTemplate: opts.Prompt,
	})

	content, err := g.completer.Complete(ctx, opts.AI, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}

	d.Content = strings.TrimSpace(content)
	d.ArticleCount = len(entries)

	saved, err := g.store.Add(userID, d)
	if err != nil {
		return nil, fmt.Errorf("save digest: %w", err)
	}

	logger.Info("digest generated",
		"digest_id", saved.ID,
		"articles", saved.ArticleCount,
	)

	return &saved, nil
}

// resolveScopeName never fails: a target that no longer resolves gets a
// generic label.
func (g *Generator) resolveScopeName(ctx context.Context, api FeedAPI, scope domain.Scope, text texts, logger *slog.Logger) string {
	switch scope.Kind {
	case domain.ScopeFeed:
		feed, err := api.GetFeed(ctx, scope.ID)
		if err != nil || feed == nil || feed.Title == "" {
			logger.Warn("feed title lookup failed", "feed_id", scope.ID, "error", err)
			return text.unknownFeed
		}
		return feed.Title
	case domain.ScopeGroup:
		categories, err := api.GetCategories(ctx)
		if err != nil {
			logger.Warn("category lookup failed", "category_id", scope.ID, "error", err)
			return text.unknownGroup
		}
		for _, c := range categories {
			if c.ID == scope.ID {
				return c.Title
			}
		}
		logger.Warn("category not found", "category_id", scope.ID)
		return text.unknownGroup
	default:
		return text.allSubscriptions
	}
}

func location(timezone string) *time.Location {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err == nil {
			return loc
		}
	}
	return time.Local
}
