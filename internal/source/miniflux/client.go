package miniflux

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"feed_digest/internal/domain"
)

// ErrNotConfigured is returned by the provider when no Miniflux endpoint is set.
var ErrNotConfigured = errors.New("miniflux is not configured")

// Config holds Miniflux API client configuration.
type Config struct {
	BaseURL        string
	APIToken       string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Client talks to the Miniflux REST API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiToken       string
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

// New creates a new Miniflux client.
func New(cfg Config, logger *slog.Logger) *Client {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiToken:       cfg.APIToken,
		maxAttempts:    maxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("component", "miniflux"),
	}
}

// GetFeed returns a single feed. A missing feed yields domain.ErrNotFound.
func (c *Client) GetFeed(ctx context.Context, id int64) (*domain.Feed, error) {
	var feed apiFeed
	if err := c.get(ctx, "/v1/feeds/"+strconv.FormatInt(id, 10), nil, &feed); err != nil {
		return nil, fmt.Errorf("get feed %d: %w", id, err)
	}

	result := &domain.Feed{ID: feed.ID, Title: feed.Title}
	if feed.Category != nil {
		result.CategoryID = feed.Category.ID
	}
	return result, nil
}

// GetCategories returns every category of the authenticated user.
func (c *Client) GetCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []apiCategory
	if err := c.get(ctx, "/v1/categories", nil, &categories); err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}

	result := make([]domain.Category, 0, len(categories))
	for _, cat := range categories {
		result = append(result, domain.Category{ID: cat.ID, Title: cat.Title})
	}
	return result, nil
}

// GetEntries lists entries matching the query.
func (c *Client) GetEntries(ctx context.Context, q domain.EntryQuery) ([]domain.Entry, error) {
	var resp entriesResponse
	if err := c.get(ctx, "/v1/entries", entryParams(q), &resp); err != nil {
		return nil, fmt.Errorf("get entries: %w", err)
	}

	c.logger.Debug("fetched entries",
		"returned", len(resp.Entries),
		"total", resp.Total,
	)

	return c.transform(resp.Entries), nil
}

func entryParams(q domain.EntryQuery) url.Values {
	params := url.Values{}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.Order != "" {
		params.Set("order", q.Order)
	}
	if q.Direction != "" {
		params.Set("direction", q.Direction)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if !q.After.IsZero() {
		params.Set("after", strconv.FormatInt(q.After.Unix(), 10))
	}
	if q.FeedID != 0 {
		params.Set("feed_id", strconv.FormatInt(q.FeedID, 10))
	}
	if q.CategoryID != 0 {
		params.Set("category_id", strconv.FormatInt(q.CategoryID, 10))
	}
	return params
}

type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	if e.message != "" {
		return fmt.Sprintf("unexpected status: %d: %s", e.status, e.message)
	}
	return fmt.Sprintf("unexpected status: %d", e.status)
}

func (e *statusError) Unwrap() error {
	if e.status == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return nil
}

// retryable reports whether another attempt could succeed. Client errors
// (4xx) are final.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status >= 500 || se.status == http.StatusTooManyRequests
	}
	return true
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err = c.doRequest(ctx, endpoint, out)
		if err == nil {
			return nil
		}

		if attempt == c.maxAttempts || !retryable(err) {
			break
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Warn("request failed, retrying",
			"path", path,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	if c.maxAttempts > 1 && retryable(err) {
		return fmt.Errorf("after %d attempts: %w", c.maxAttempts, err)
	}
	return err
}

func (c *Client) doRequest(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "FeedDigest/1.0")
	req.Header.Set("X-Auth-Token", c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr apiError
		_ = json.Unmarshal(body, &apiErr)
		return &statusError{status: resp.StatusCode, message: apiErr.ErrorMessage}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}

func (c *Client) transform(entries []apiEntry) []domain.Entry {
	result := make([]domain.Entry, 0, len(entries))

	for _, e := range entries {
		publishedAt, err := time.Parse(time.RFC3339, e.PublishedAt)
		if err != nil {
			c.logger.Warn("failed to parse date",
				"entry_id", e.ID,
				"date", e.PublishedAt,
			)
		}

		result = append(result, domain.Entry{
			ID:          e.ID,
			Title:       e.Title,
			Content:     e.Content,
			URL:         e.URL,
			PublishedAt: publishedAt,
			FeedTitle:   e.Feed.Title,
		})
	}

	return result
}
