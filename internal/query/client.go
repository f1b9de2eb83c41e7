// Package query caches per-user reads and invalidates them after successful
// writes. Each cache key carries a monotonically increasing version; a cached
// value is served only while its version matches the key's current one.
package query

import (
	"errors"
	"log/slog"
	"sync"
)

// ErrNoUser is returned by reads attempted before a user is known.
var ErrNoUser = errors.New("query: no user")

// Kind names a cached entity list.
type Kind string

const (
	KindAnime         Kind = "animeList"
	KindTodos         Kind = "todoList"
	KindSpending      Kind = "spendingList"
	KindSpendingGoals Kind = "spendingGoals"
	KindHealth        Kind = "healthMetrics"
	KindSettings      Kind = "userSettings"
	KindPomodoro      Kind = "pomodoroStats"
)

// Key identifies one cached read. Period, when set, is a UTC date.
type Key struct {
	Kind   Kind
	UserID string
	Period string
}

func (k Key) String() string {
	s := string(k.Kind) + "/" + k.UserID
	if k.Period != "" {
		s += "/" + k.Period
	}
	return s
}

type entry struct {
	version uint64
	value   any
}

// Client is safe for concurrent use.
type Client struct {
	mu       sync.Mutex
	versions map[Key]uint64
	entries  map[Key]entry
	logger   *slog.Logger
}

func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		versions: make(map[Key]uint64),
		entries:  make(map[Key]entry),
		logger:   logger,
	}
}

// Version returns the current version of key. Unknown keys are at 0.
func (c *Client) Version(key Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[key]
}

// Invalidate marks key stale so the next Fetch calls the backend.
func (c *Client) Invalidate(key Key) {
	c.mu.Lock()
	c.versions[key]++
	c.mu.Unlock()
	c.logger.Debug("Invalidated query", slog.String("key", key.String()))
}

// InvalidateUser marks every known key belonging to userID stale.
func (c *Client) InvalidateUser(userID string) {
	c.mu.Lock()
	n := 0
	for k := range c.versions {
		if k.UserID == userID {
			c.versions[k]++
			n++
		}
	}
	c.mu.Unlock()
	c.logger.Debug("Invalidated user queries", slog.String("user", userID), slog.Int("count", n))
}

// Clear drops every cached value. Versions keep counting so a fetch started
// before Clear cannot repopulate the cache with a fresh-looking entry.
func (c *Client) Clear() {
	c.mu.Lock()
	for k := range c.versions {
		c.versions[k]++
	}
	c.entries = make(map[Key]entry)
	c.mu.Unlock()
}

func (c *Client) lookup(key Key) (any, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, seen := c.versions[key]
	if !seen {
		c.versions[key] = 0
	}
	e, ok := c.entries[key]
	if ok && e.version == v {
		return e.value, v, true
	}
	return nil, v, false
}

func (c *Client) store(key Key, version uint64, value any) {
	c.mu.Lock()
	c.entries[key] = entry{version: version, value: value}
	c.mu.Unlock()
}

// Fetch returns the cached value for key or loads it with fn.
//
// The value is tagged with the version seen before fn ran, so an
// invalidation that lands while fn is in flight leaves the entry stale.
// When fn fails nothing is cached.
func Fetch[T any](c *Client, key Key, fn func() (T, error)) (T, error) {
	var zero T
	if key.UserID == "" {
		return zero, ErrNoUser
	}
	cached, version, ok := c.lookup(key)
	if ok {
		if t, ok := cached.(T); ok {
			return t, nil
		}
	}
	value, err := fn()
	if err != nil {
		c.logger.Debug("Query failed", slog.String("key", key.String()), slog.String("error", err.Error()))
		return zero, err
	}
	c.store(key, version, value)
	return value, nil
}

// Cached returns the last value stored for key if it is still current.
func Cached[T any](c *Client, key Key) (T, bool) {
	var zero T
	v, _, ok := c.lookup(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Mutate runs fn and, only if it succeeds, invalidates every key in keys.
func Mutate(c *Client, fn func() error, keys ...Key) error {
	if err := fn(); err != nil {
		c.logger.Debug("Mutation failed", slog.String("error", err.Error()))
		return err
	}
	for _, k := range keys {
		c.Invalidate(k)
	}
	return nil
}
