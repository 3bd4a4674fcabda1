package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"feed_digest/internal/digest"
	"feed_digest/internal/domain"
	"feed_digest/internal/push"
)

type FeedAPIProvider interface {
	ForUser(ctx context.Context, userID string) (digest.FeedAPI, error)
}

type Generator interface {
	Generate(ctx context.Context, api digest.FeedAPI, userID string, opts digest.Options) (*domain.Digest, error)
}

type Pusher interface {
	Send(ctx context.Context, cfg domain.PushConfig, title, content string) (*push.Response, error)
}

type Publisher interface {
	PublishDigest(ctx context.Context, event domain.DigestEvent) error
}

type TaskRunStore interface {
	Get(ctx context.Context, userID, taskID string) (*domain.TaskRun, error)
	Update(ctx context.Context, run *domain.TaskRun) error
}
