// Package push delivers digests to user-configured webhooks.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"feed_digest/internal/domain"
)

var ErrNoURL = errors.New("push url is empty")

const (
	DefaultChunkDelay = 500 * time.Millisecond

	// minChunkBudget is the smallest per-chunk content budget worth
	// splitting for. Below it the content is sent whole.
	minChunkBudget = 100
)

type Config struct {
	Timeout    time.Duration
	ChunkDelay time.Duration
}

// Response describes the last request sent.
type Response struct {
	Status int
	OK     bool
	Chunks int
}

type Dispatcher struct {
	client     *http.Client
	chunkDelay time.Duration
	logger     *slog.Logger
}

func NewDispatcher(cfg Config, logger *slog.Logger) *Dispatcher {
	delay := cfg.ChunkDelay
	if delay <= 0 {
		delay = DefaultChunkDelay
	}
	return &Dispatcher{
		client:     &http.Client{Timeout: cfg.Timeout},
		chunkDelay: delay,
		logger:     logger.With("component", "push"),
	}
}

// Send pushes a digest. Transport errors are returned; a non-2xx answer is
// reported through Response with OK false. Multi-chunk POSTs stop at the
// first failed chunk.
func (d *Dispatcher) Send(ctx context.Context, cfg domain.PushConfig, title, content string) (*Response, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, ErrNoURL
	}

	if strings.EqualFold(cfg.Method, http.MethodGet) {
		return d.sendGet(ctx, cfg.URL, title, content)
	}
	return d.sendPost(ctx, cfg, title, content)
}

// escapeComponent encodes a value for any URL position: spaces become
// %20 so placeholders in a path segment decode correctly too.
func escapeComponent(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

func (d *Dispatcher) sendGet(ctx context.Context, rawURL, title, content string) (*Response, error) {
	target := strings.NewReplacer(
		placeholderTitle, escapeComponent(title),
		placeholderContent, escapeComponent(content),
	).Replace(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	status, err := d.do(req)
	if err != nil {
		return nil, err
	}

	resp := &Response{Status: status, OK: isSuccess(status), Chunks: 1}
	if !resp.OK {
		d.logger.Warn("push returned non-2xx", "method", http.MethodGet, "status", status)
	}
	return resp, nil
}

func (d *Dispatcher) sendPost(ctx context.Context, cfg domain.PushConfig, title, content string) (*Response, error) {
	svc := detectService(cfg.URL)

	template := cfg.Body
	if strings.TrimSpace(template) == "" {
		template = templates[svc]
	}
	template = strings.NewReplacer("\r", "", "\n", "").Replace(template)

	chunks := []string{content}
	if limit, ok := limits[svc]; ok && utf8.RuneCountInString(content) > limit {
		if budget := chunkBudget(template, title, limit); budget > minChunkBudget {
			chunks = SplitText(content, budget)
		}
	}

	logger := d.logger.With("service", svc, "chunks", len(chunks))

	var resp *Response
	for i, chunk := range chunks {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(d.chunkDelay):
			}
		}

		chunkTitle := ""
		if i == 0 {
			chunkTitle = title
		}

		body := strings.NewReplacer(
			placeholderTitle, jsonEscape(chunkTitle),
			placeholderContent, jsonEscape(chunk),
		).Replace(template)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, strings.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		status, err := d.do(req)
		if err != nil {
			return nil, fmt.Errorf("send chunk %d/%d: %w", i+1, len(chunks), err)
		}

		resp = &Response{Status: status, OK: isSuccess(status), Chunks: i + 1}
		if !resp.OK {
			logger.Warn("push returned non-2xx", "chunk", i+1, "status", status)
			break
		}
	}

	logger.Debug("push sent", "status", resp.Status)
	return resp, nil
}

// chunkBudget is the room left for content in one message once the
// template and title are accounted for. The overhead charge is capped at
// 30% of the limit.
func chunkBudget(template, title string, limit int) int {
	overhead := strings.NewReplacer(
		placeholderTitle, title,
		placeholderContent, "",
	).Replace(template)

	charge := utf8.RuneCountInString(overhead)
	if maxCharge := int(float64(limit) * minSplitRatio); charge > maxCharge {
		charge = maxCharge
	}
	return limit - charge
}

func (d *Dispatcher) do(req *http.Request) (int, error) {
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return resp.StatusCode, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// jsonEscape returns s encoded as the inside of a JSON string literal.
func jsonEscape(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)

	out := strings.TrimSuffix(buf.String(), "\n")
	return out[1 : len(out)-1]
}
