package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"feed_digest/internal/domain"
)

const defaultBaseURL = "https://api.openai.com/v1"

// ErrNotConfigured is returned when the user's AI config has no API key.
var ErrNotConfigured = errors.New("ai: api key is empty")

// Client calls OpenAI-compatible chat completion endpoints. The endpoint,
// key and model come from each user's AIConfig.
type Client struct {
	http         *http.Client
	defaultModel string
	logger       *slog.Logger
}

func NewClient(timeout time.Duration, defaultModel string, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		http:         &http.Client{Timeout: timeout},
		defaultModel: defaultModel,
		logger:       logger.With("component", "ai"),
	}
}

type ChatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const RoleUser = "user"

type ChatCompletionResponse struct {
	Choices []ChatCompletionChoice `json:"choices"`
	Usage   *ChatCompletionUsage   `json:"usage,omitempty"`
}

type ChatCompletionChoice struct {
	Message ChatMessage `json:"message"`
}

type ChatCompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends prompt as a single user message and returns the first
// choice's content.
func (c *Client) Complete(ctx context.Context, cfg domain.AIConfig, prompt string) (string, error) {
	if cfg.APIKey == "" {
		return "", ErrNotConfigured
	}

	model := cfg.Model
	if model == "" {
		model = c.defaultModel
	}

	completion, err := c.CreateChatCompletion(ctx, cfg, ChatCompletionRequest{
		Model:    model,
		Messages: []ChatMessage{{Role: RoleUser, Content: prompt}},
		Stream:   false,
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("ai: response has no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// CreateChatCompletion calls {apiUrl}/chat/completions.
func (c *Client) CreateChatCompletion(ctx context.Context, cfg domain.AIConfig, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return ChatCompletionResponse{}, fmt.Errorf("ai: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint(cfg.APIURL), bytes.NewReader(body))
	if err != nil {
		return ChatCompletionResponse{}, fmt.Errorf("ai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return ChatCompletionResponse{}, fmt.Errorf("ai: do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return ChatCompletionResponse{}, fmt.Errorf("ai: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var apiErr apiErrorResponse
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			return ChatCompletionResponse{}, fmt.Errorf("ai: %s", apiErr.Error.Message)
		}
		return ChatCompletionResponse{}, fmt.Errorf("ai: unexpected status %d", resp.StatusCode)
	}

	var completion ChatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return ChatCompletionResponse{}, fmt.Errorf("ai: decode response: %w", err)
	}

	attrs := []any{"model", req.Model, "duration", time.Since(start)}
	if completion.Usage != nil {
		attrs = append(attrs, "total_tokens", completion.Usage.TotalTokens)
	}
	c.logger.Debug("chat completion finished", attrs...)

	return completion, nil
}

// endpoint accepts either a base URL or a full chat completions URL.
func endpoint(apiURL string) string {
	base := strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/chat/completions"
}
