// Package ratelimit provides fixed window counters limiting how often a user
// may perform an action.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "issuedesk:ratelimit:"

// Redis counts events with INCR and expires the counter at the end of the window
type Redis struct {
	client *redis.Client
	limit  int
	window time.Duration
}

var _ interfaces.RateLimiter = (*Redis)(nil)

// NewRedis creates a limiter allowing limit events per window for each key
func NewRedis(client *redis.Client, limit int, window time.Duration) *Redis {
	return &Redis{client: client, limit: limit, window: window}
}

// Allow implements interfaces.RateLimiter
func (r *Redis) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if r.limit <= 0 {
		return true, 0, nil
	}

	k := keyPrefix + key
	count, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, goerr.Wrap(err, "failed to increment rate limit counter", goerr.V("key", k))
	}

	if count == 1 {
		if err := r.client.Expire(ctx, k, r.window).Err(); err != nil {
			return false, 0, goerr.Wrap(err, "failed to set rate limit window", goerr.V("key", k))
		}
	}

	if count <= int64(r.limit) {
		return true, 0, nil
	}

	ttl, err := r.client.TTL(ctx, k).Result()
	if err != nil {
		return false, 0, goerr.Wrap(err, "failed to get rate limit window", goerr.V("key", k))
	}
	if ttl < 0 {
		// Counter lost its expiry; restart the window
		if err := r.client.Expire(ctx, k, r.window).Err(); err != nil {
			return false, 0, goerr.Wrap(err, "failed to reset rate limit window", goerr.V("key", k))
		}
		ttl = r.window
	}

	return false, ttl, nil
}

type window struct {
	count   int
	resetAt time.Time
}

// Memory is an in-process fixed window limiter
type Memory struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	windows map[string]*window
}

var _ interfaces.RateLimiter = (*Memory)(nil)

// MemoryOption configures a Memory limiter
type MemoryOption func(*Memory)

// WithClock replaces the clock used to open and close windows
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

// NewMemory creates a limiter allowing limit events per window for each key
func NewMemory(limit int, period time.Duration, opts ...MemoryOption) *Memory {
	m := &Memory{
		limit:   limit,
		window:  period,
		now:     time.Now,
		windows: make(map[string]*window),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Allow implements interfaces.RateLimiter
func (m *Memory) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if m.limit <= 0 {
		return true, 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(m.window)}
		m.windows[key] = w
		m.gc(now)
	}

	w.count++
	if w.count <= m.limit {
		return true, 0, nil
	}
	return false, w.resetAt.Sub(now), nil
}

// gc drops expired windows. Called with mu held.
func (m *Memory) gc(now time.Time) {
	for k, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, k)
		}
	}
}
