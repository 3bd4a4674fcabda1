package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feed_digest/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestComplete_SendsSingleUserMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, RoleUser, req.Messages[0].Role)
		assert.Equal(t, "summarize this", req.Messages[0].Content)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"the digest"}}],"usage":{"total_tokens":12}}`))
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, "fallback-model", testLogger())
	content, err := client.Complete(context.Background(), domain.AIConfig{
		APIURL: srv.URL + "/v1/",
		APIKey: "sk-test",
		Model:  "gpt-test",
	}, "summarize this")

	require.NoError(t, err)
	assert.Equal(t, "the digest", content)
}

func TestComplete_UsesDefaultModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "fallback-model", req.Model)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, "fallback-model", testLogger())
	_, err := client.Complete(context.Background(), domain.AIConfig{APIURL: srv.URL + "/chat/completions", APIKey: "k"}, "p")

	require.NoError(t, err)
}

func TestComplete_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, "m", testLogger())
	_, err := client.Complete(context.Background(), domain.AIConfig{APIURL: srv.URL, APIKey: "bad"}, "p")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestComplete_NotConfigured(t *testing.T) {
	client := NewClient(time.Second, "m", testLogger())

	_, err := client.Complete(context.Background(), domain.AIConfig{}, "p")

	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, defaultBaseURL+"/chat/completions", endpoint(""))
	assert.Equal(t, "https://llm.local/v1/chat/completions", endpoint("https://llm.local/v1"))
	assert.Equal(t, "https://llm.local/v1/chat/completions", endpoint("https://llm.local/v1/chat/completions/"))
}
