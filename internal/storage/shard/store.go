// Package shard persists digests as one JSON file per user per day.
//
// Files are named "<userId>_<YYYY-MM-DD>.json" and hold that day's digests
// newest first. The day is the local calendar date of the timestamp
// embedded in the digest ID, which is also the digest's generatedAt, so a
// lookup by ID touches exactly one file.
//
// Writes rewrite the whole shard. They are serialized per shard inside
// this process only: running two processes against one directory is not
// supported.
package shard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	"feed_digest/internal/domain"
)

const (
	dateLayout   = "2006-01-02"
	idPrefix     = "digest"
	suffixLen    = 9
	suffixChars  = "0123456789abcdefghijklmnopqrstuvwxyz"
	defaultLimit = 20

	// fallbackShards bounds the scan when an ID does not point at its shard.
	fallbackShards = 30
)

type Config struct {
	Dir      string
	Location *time.Location
}

type Store struct {
	dir    string
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*shardLock
}

// shardLock is dropped from Store.locks once nobody holds or waits for it.
type shardLock struct {
	mu   sync.Mutex
	refs int
}

func NewStore(cfg Config, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create digest dir: %w", err)
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		dir:    cfg.Dir,
		loc:    loc,
		logger: logger.With("component", "digest_store"),
		now:    time.Now,
		locks:  make(map[string]*shardLock),
	}, nil
}

// Add assigns an ID derived from GeneratedAt (now when unset) and prepends
// the digest to that day's shard.
func (s *Store) Add(userID string, d domain.Digest) (domain.Digest, error) {
	ts := d.GeneratedAt
	if ts.IsZero() {
		ts = s.now()
	}
	ts = ts.UTC().Truncate(time.Millisecond)

	d.ID = newID(ts)
	d.GeneratedAt = ts

	date := s.dateOf(ts)
	unlock := s.lock(userID, date)
	defer unlock()

	path := s.shardPath(userID, date)
	items, err := readShard(path)
	if err != nil {
		return domain.Digest{}, fmt.Errorf("read shard %s: %w", filepath.Base(path), err)
	}

	items = append([]domain.Digest{d}, items...)
	if err := writeShard(path, items); err != nil {
		return domain.Digest{}, fmt.Errorf("write shard %s: %w", filepath.Base(path), err)
	}

	return d, nil
}

// Get returns the digest or nil. It reads the shard named by the ID first
// and falls back to scanning the most recent shards.
func (s *Store) Get(userID, id string) *domain.Digest {
	var checked string
	if ts, ok := parseID(id); ok {
		checked = s.dateOf(ts)
		if d := findIn(s.readForQuery(s.shardPath(userID, checked)), id); d != nil {
			return d
		}
	}

	for i, sh := range s.listShards(userID) {
		if i >= fallbackShards {
			break
		}
		if sh.date == checked {
			continue
		}
		if d := findIn(s.readForQuery(sh.path), id); d != nil {
			return d
		}
	}
	return nil
}

type GetAllOptions struct {
	Scope      *domain.Scope
	UnreadOnly bool
	Limit      int
	// Before and BeforeID form the paging cursor: pass the GeneratedAt and
	// ID of the last digest of the previous page. Digests sharing the
	// cursor's millisecond are ordered by ID descending. Without BeforeID
	// the cursor excludes that whole millisecond. The zero Before means
	// one second from now.
	Before   time.Time
	BeforeID string
}

// GetAll pages through digests newest first, walking shards from the
// most recent date until Limit digests have been collected.
func (s *Store) GetAll(userID string, opts GetAllOptions) []domain.Digest {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	before := opts.Before
	if before.IsZero() {
		before = s.now().Add(time.Second)
	}
	beforeDate := s.dateOf(before)

	var collected []domain.Digest
	for _, sh := range s.listShards(userID) {
		if sh.date > beforeDate {
			continue
		}

		for _, d := range s.readForQuery(sh.path) {
			if sh.date == beforeDate && !beforeCursor(d, before, opts.BeforeID) {
				continue
			}
			if !matches(d, opts) {
				continue
			}
			collected = append(collected, d)
		}

		if len(collected) >= limit {
			break
		}
	}

	sort.SliceStable(collected, func(i, j int) bool {
		a, b := collected[i], collected[j]
		if !a.GeneratedAt.Equal(b.GeneratedAt) {
			return a.GeneratedAt.After(b.GeneratedAt)
		}
		return a.ID > b.ID
	})
	if len(collected) > limit {
		collected = collected[:limit]
	}
	return collected
}

func beforeCursor(d domain.Digest, before time.Time, beforeID string) bool {
	if d.GeneratedAt.Before(before) {
		return true
	}
	return beforeID != "" && d.GeneratedAt.Equal(before) && d.ID < beforeID
}

func matches(d domain.Digest, opts GetAllOptions) bool {
	if opts.UnreadOnly && d.IsRead {
		return false
	}
	if opts.Scope != nil {
		target := d.Target()
		if target.Kind != opts.Scope.Kind {
			return false
		}
		if target.Kind != domain.ScopeAll && target.ID != opts.Scope.ID {
			return false
		}
	}
	return true
}

type ArticleListOptions struct {
	Scope      *domain.Scope
	UnreadOnly bool
	Limit      int
	Before     time.Time
	BeforeID   string
	// Location decides what "today" means for pinning. Defaults to the
	// store's location.
	Location *time.Location
}

type ArticleList struct {
	Pinned []domain.Digest `json:"pinned"`
	Normal []domain.Digest `json:"normal"`
}

// GetForArticleList splits digests into today's unread ones, pinned above
// the article list, and the rest. Nothing is pinned when paging
// historically (Before set).
func (s *Store) GetForArticleList(userID string, opts ArticleListOptions) ArticleList {
	all := s.GetAll(userID, GetAllOptions{
		Scope:    opts.Scope,
		Limit:    opts.Limit,
		Before:   opts.Before,
		BeforeID: opts.BeforeID,
	})

	loc := opts.Location
	if loc == nil {
		loc = s.loc
	}
	today := s.now().In(loc).Format(dateLayout)

	list := ArticleList{Pinned: []domain.Digest{}, Normal: []domain.Digest{}}
	for _, d := range all {
		if opts.Before.IsZero() && !d.IsRead && d.GeneratedAt.In(loc).Format(dateLayout) == today {
			list.Pinned = append(list.Pinned, d)
			continue
		}
		if opts.UnreadOnly && d.IsRead {
			continue
		}
		list.Normal = append(list.Normal, d)
	}
	return list
}

func (s *Store) MarkAsRead(userID, id string) (bool, error) {
	return s.mutate(userID, id, func(items []domain.Digest, i int) []domain.Digest {
		items[i].IsRead = true
		return items
	})
}

func (s *Store) MarkAsUnread(userID, id string) (bool, error) {
	return s.mutate(userID, id, func(items []domain.Digest, i int) []domain.Digest {
		items[i].IsRead = false
		return items
	})
}

func (s *Store) Delete(userID, id string) (bool, error) {
	return s.mutate(userID, id, func(items []domain.Digest, i int) []domain.Digest {
		return append(items[:i], items[i+1:]...)
	})
}

// mutate applies fn to the digest with the given ID and rewrites its shard.
// Unknown IDs report false without an error.
func (s *Store) mutate(userID, id string, fn func(items []domain.Digest, i int) []domain.Digest) (bool, error) {
	ts, ok := parseID(id)
	if !ok {
		return false, nil
	}

	date := s.dateOf(ts)
	unlock := s.lock(userID, date)
	defer unlock()

	path := s.shardPath(userID, date)
	items, err := readShard(path)
	if err != nil {
		return false, fmt.Errorf("read shard %s: %w", filepath.Base(path), err)
	}

	idx := -1
	for i := range items {
		if items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	items = fn(items, idx)
	if len(items) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("remove shard %s: %w", filepath.Base(path), err)
		}
		return true, nil
	}
	if err := writeShard(path, items); err != nil {
		return false, fmt.Errorf("write shard %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

func (s *Store) lock(userID, date string) func() {
	key := userID + "_" + date

	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &shardLock{}
		s.locks[key] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}

func (s *Store) dateOf(t time.Time) string {
	return t.In(s.loc).Format(dateLayout)
}

func (s *Store) shardPath(userID, date string) string {
	return filepath.Join(s.dir, userID+"_"+date+".json")
}

type shardFile struct {
	date string
	path string
}

// listShards returns the user's shards, newest date first.
func (s *Store) listShards(userID string) []shardFile {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn("list shards failed", "user_id", userID, "error", err)
		return nil
	}

	prefix := userID + "_"
	var shards []shardFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		date := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json")
		if _, err := time.Parse(dateLayout, date); err != nil {
			continue
		}
		shards = append(shards, shardFile{date: date, path: filepath.Join(s.dir, name)})
	}

	sort.Slice(shards, func(i, j int) bool {
		return shards[i].date > shards[j].date
	})
	return shards
}

// readForQuery degrades unreadable shards to empty so one corrupt file
// cannot break listing.
func (s *Store) readForQuery(path string) []domain.Digest {
	items, err := readShard(path)
	if err != nil {
		s.logger.Warn("skipping unreadable shard", "shard", filepath.Base(path), "error", err)
		return nil
	}
	return items
}

func readShard(path string) ([]domain.Digest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var items []domain.Digest
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return items, nil
}

func writeShard(path string, items []domain.Digest) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}

func findIn(items []domain.Digest, id string) *domain.Digest {
	for i := range items {
		if items[i].ID == id {
			d := items[i]
			return &d
		}
	}
	return nil
}

func newID(ts time.Time) string {
	suffix := make([]byte, suffixLen)
	for i := range suffix {
		suffix[i] = suffixChars[rand.IntN(len(suffixChars))]
	}
	return fmt.Sprintf("%s_%d_%s", idPrefix, ts.UnixMilli(), suffix)
}

// parseID extracts the creation instant from "digest_<millis>_<suffix>".
func parseID(id string) (time.Time, bool) {
	parts := strings.Split(id, "_")
	if len(parts) != 3 || parts[0] != idPrefix {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}
