package miniflux

import (
	"context"

	"feed_digest/internal/digest"
)

// Provider hands out the Miniflux client used for a user's digests.
// Every user shares the single configured instance.
type Provider struct {
	client *Client
}

func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

func (p *Provider) ForUser(ctx context.Context, userID string) (digest.FeedAPI, error) {
	if p.client == nil || p.client.baseURL == "" {
		return nil, ErrNotConfigured
	}
	return p.client, nil
}
