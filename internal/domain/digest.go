package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned by collaborators when a feed, category or digest does not exist.
var ErrNotFound = errors.New("not found")

type ScopeKind string

const (
	ScopeAll   ScopeKind = "all"
	ScopeFeed  ScopeKind = "feed"
	ScopeGroup ScopeKind = "group"
)

// Scope selects what a digest summarizes: every subscription, one feed or one category.
type Scope struct {
	Kind ScopeKind
	ID   int64
}

func AllScope() Scope {
	return Scope{Kind: ScopeAll}
}

func FeedScope(id int64) Scope {
	return Scope{Kind: ScopeFeed, ID: id}
}

func GroupScope(id int64) Scope {
	return Scope{Kind: ScopeGroup, ID: id}
}

// IDPtr returns the target id, or nil for the all-subscriptions scope.
func (s Scope) IDPtr() *int64 {
	if s.Kind == ScopeAll || s.Kind == "" {
		return nil
	}
	id := s.ID
	return &id
}

type Digest struct {
	ID           string    `json:"id"`
	Scope        ScopeKind `json:"scope"`
	ScopeID      *int64    `json:"scopeId"`
	ScopeName    string    `json:"scopeName"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	ArticleCount int       `json:"articleCount"`
	Hours        int       `json:"hours"`
	GeneratedAt  time.Time `json:"generatedAt"`
	IsRead       bool      `json:"isRead"`
}

// Target returns the scope the digest was generated for.
func (d Digest) Target() Scope {
	if d.Scope == "" || d.Scope == ScopeAll || d.ScopeID == nil {
		return AllScope()
	}
	return Scope{Kind: d.Scope, ID: *d.ScopeID}
}

// Persisted reports whether the digest was written to the store.
// The "no articles" placeholder never is.
func (d Digest) Persisted() bool {
	return d.ID != ""
}
