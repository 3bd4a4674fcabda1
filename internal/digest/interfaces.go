package digest

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"feed_digest/internal/domain"
)

// FeedAPI is the subset of the feed-aggregation API digests are built from.
type FeedAPI interface {
	GetFeed(ctx context.Context, id int64) (*domain.Feed, error)
	GetCategories(ctx context.Context) ([]domain.Category, error)
	GetEntries(ctx context.Context, q domain.EntryQuery) ([]domain.Entry, error)
}

type Completer interface {
	Complete(ctx context.Context, cfg domain.AIConfig, prompt string) (string, error)
}

type Store interface {
	Add(userID string, d domain.Digest) (domain.Digest, error)
}
