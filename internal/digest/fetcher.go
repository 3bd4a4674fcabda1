package digest

import (
	"context"
	"time"

	"feed_digest/internal/domain"
)

const defaultFetchLimit = 500

type FetchOptions struct {
	Hours      int
	Scope      domain.Scope
	UnreadOnly bool
	Limit      int
	Now        time.Time
}

// FetchContent returns the newest entries published within the last
// opts.Hours, filtered server-side by feed or category. API errors are
// returned as is; retrying is the client's job.
func FetchContent(ctx context.Context, api FeedAPI, opts FetchOptions) ([]domain.Entry, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultFetchLimit
	}

	q := domain.EntryQuery{
		Order:     domain.EntryOrderPublishedAt,
		Direction: domain.DirectionDesc,
		Limit:     limit,
		After:     now.Add(-time.Duration(opts.Hours) * time.Hour),
	}
	if opts.UnreadOnly {
		q.Status = domain.EntryStatusUnread
	}
	switch opts.Scope.Kind {
	case domain.ScopeFeed:
		q.FeedID = opts.Scope.ID
	case domain.ScopeGroup:
		q.CategoryID = opts.Scope.ID
	}

	entries, err := api.GetEntries(ctx, q)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.Entry{}
	}
	return entries, nil
}
