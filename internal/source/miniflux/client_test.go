package miniflux

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"feed_digest/internal/domain"
)

type ClientTestSuite struct {
	suite.Suite
	ctx    context.Context
	logger *slog.Logger
}

func (s *ClientTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) newClient(url string) *Client {
	return New(Config{
		BaseURL:        url,
		APIToken:       "secret",
		Timeout:        5 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}, s.logger)
}

func (s *ClientTestSuite) TestGetEntries_SendsFilters() {
	after := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/v1/entries", r.URL.Path)
		s.Equal("secret", r.Header.Get("X-Auth-Token"))

		q := r.URL.Query()
		s.Equal("unread", q.Get("status"))
		s.Equal("published_at", q.Get("order"))
		s.Equal("desc", q.Get("direction"))
		s.Equal("500", q.Get("limit"))
		s.Equal("1709294400", q.Get("after"))
		s.Equal("7", q.Get("category_id"))
		s.Empty(q.Get("feed_id"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total":1,"entries":[{"id":42,"title":"Hello","content":"<p>Body</p>","url":"https://example.com/a","published_at":"2024-03-01T13:00:00Z","feed":{"id":3,"title":"Example Feed"}}]}`))
	}))
	defer srv.Close()

	entries, err := s.newClient(srv.URL).GetEntries(s.ctx, domain.EntryQuery{
		Status:     domain.EntryStatusUnread,
		Order:      domain.EntryOrderPublishedAt,
		Direction:  domain.DirectionDesc,
		Limit:      500,
		After:      after,
		CategoryID: 7,
	})

	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(int64(42), entries[0].ID)
	s.Equal("Example Feed", entries[0].FeedTitle)
	s.Equal(time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC), entries[0].PublishedAt.UTC())
}

func (s *ClientTestSuite) TestGetEntries_Empty() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total":0,"entries":[]}`))
	}))
	defer srv.Close()

	entries, err := s.newClient(srv.URL).GetEntries(s.ctx, domain.EntryQuery{})

	s.NoError(err)
	s.Empty(entries)
}

func (s *ClientTestSuite) TestGetFeed_NotFound() {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error_message":"resource not found"}`))
	}))
	defer srv.Close()

	feed, err := s.newClient(srv.URL).GetFeed(s.ctx, 999)

	s.Nil(feed)
	s.ErrorIs(err, domain.ErrNotFound)
	s.Contains(err.Error(), "resource not found")
	s.Equal(int32(1), calls.Load())
}

func (s *ClientTestSuite) TestGetFeed_RetriesServerErrors() {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		s.Equal("/v1/feeds/5", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":5,"title":"Tech","category":{"id":2,"title":"News"}}`))
	}))
	defer srv.Close()

	feed, err := s.newClient(srv.URL).GetFeed(s.ctx, 5)

	s.Require().NoError(err)
	s.Equal("Tech", feed.Title)
	s.Equal(int64(2), feed.CategoryID)
	s.Equal(int32(3), calls.Load())
}

func (s *ClientTestSuite) TestGetCategories_GivesUpAfterMaxAttempts() {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := s.newClient(srv.URL).GetCategories(s.ctx)

	s.Error(err)
	s.Contains(err.Error(), "after 3 attempts")
	s.Equal(int32(3), calls.Load())
}

func (s *ClientTestSuite) TestProvider_Unconfigured() {
	_, err := NewProvider(s.newClient("")).ForUser(s.ctx, "alice")
	s.ErrorIs(err, ErrNotConfigured)

	api, err := NewProvider(s.newClient("http://miniflux.local")).ForUser(s.ctx, "alice")
	s.NoError(err)
	s.NotNil(api)
}
