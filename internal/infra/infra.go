// Package infra provides the shared plumbing of the render API: a TTL cache
// for rendered gauges and a token-bucket rate limiter.
package infra

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// --- Render cache ---

// Rendered is one encoded gauge.
type Rendered struct {
	Body        []byte
	ContentType string
}

type cacheEntry struct {
	value     Rendered
	expiresAt time.Time
}

// RenderCache is a thread-safe in-memory cache of rendered gauges with TTL.
// A zero or negative TTL disables caching.
type RenderCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRenderCache creates a cache with the given TTL.
func NewRenderCache(ttl time.Duration) *RenderCache {
	return &RenderCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a cached render. Returns false if not found or expired.
func (c *RenderCache) Get(key string) (Rendered, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expiresAt) {
		c.misses.Add(1)
		return Rendered{}, false
	}
	c.hits.Add(1)
	return entry.value, true
}

// Set stores a render.
func (c *RenderCache) Set(key string, r Rendered) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: r, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// GetOrRender returns the cached render for key, calling render on a miss.
// Failed renders are not cached.
func (c *RenderCache) GetOrRender(key string, render func() (Rendered, error)) (Rendered, bool, error) {
	if r, ok := c.Get(key); ok {
		return r, true, nil
	}
	r, err := render()
	if err != nil {
		return Rendered{}, false, err
	}
	c.Set(key, r)
	return r, false, nil
}

// Len returns the number of stored entries, expired ones included.
func (c *RenderCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the hit and miss counts.
func (c *RenderCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Flush removes all entries from the cache.
func (c *RenderCache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Cleanup removes expired entries.
func (c *RenderCache) Cleanup() {
	c.mu.Lock()
	now := c.now()
	for k, v := range c.entries {
		if now.After(v.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// RunJanitor calls Cleanup every interval until ctx is done.
func (c *RenderCache) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Cleanup()
		}
	}
}

// CacheKey builds a stable key from request parameters, independent of
// their order.
func CacheKey(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}

// --- Rate limiter ---

// RateLimiter provides simple token-bucket rate limiting.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
}

// NewRateLimiter creates a rate limiter that allows maxTokens requests
// and refills one token per refillRate.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	if maxTokens < 1 {
		maxTokens = 1
	}
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// NewRateLimiterPerSecond creates a limiter refilling perSecond tokens a
// second with the given burst. A non-positive rate returns nil, which
// allows everything.
func NewRateLimiterPerSecond(perSecond float64, burst int) *RateLimiter {
	if perSecond <= 0 {
		return nil
	}
	return NewRateLimiter(burst, time.Duration(float64(time.Second)/perSecond))
}

// Allow takes a token if one is available. A nil limiter always allows.
func (rl *RateLimiter) Allow() bool {
	if rl == nil {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		if rl.Allow() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rl.refillRate):
		}
	}
}

// refill adds tokens based on elapsed time. Must be called with mu held.
func (rl *RateLimiter) refill() {
	if rl.refillRate <= 0 {
		rl.tokens = rl.maxTokens
		return
	}
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill)
	if elapsed >= rl.refillRate {
		periods := int(elapsed / rl.refillRate)
		rl.tokens += periods
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
		}
		rl.lastRefill = rl.lastRefill.Add(time.Duration(periods) * rl.refillRate)
	}
}
