package cache

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Stats reports response cache introspection data.
type Stats struct {
	// VolatileEntries is the current volatile-tier entry count, including
	// expired entries that have not yet been evicted by a read.
	VolatileEntries int `json:"volatileEntries"`
}

// ResponseCache is the two-tier response cache. The volatile tier is always
// present and authoritative; a durable tier is consulted on volatile misses
// and mirrored on writes when configured. Durable-tier failures never surface
// to callers: a failed read is a miss, a failed write is dropped.
// NewResponseCache should be used to create instances of ResponseCache.
type ResponseCache struct {
	logger     hclog.Logger
	volatile   *MemoryStore
	durable    Store
	defaultTTL time.Duration
}

// NewResponseCache creates a response cache with the provided options.
func NewResponseCache(logger hclog.Logger, opt ...Option) (*ResponseCache, error) {
	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	return &ResponseCache{
		logger:     logger.Named("cache"),
		volatile:   NewMemoryStore(),
		durable:    opts.durable,
		defaultTTL: opts.defaultTTL,
	}, nil
}

// Get returns the cached value for key, consulting the volatile tier first and
// falling back to the durable tier. A durable hit is promoted into the
// volatile tier with its remaining TTL.
func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, _, ok, _ := c.volatile.Get(ctx, key)
	if ok {
		return value, true
	}

	if c.durable == nil {
		return nil, false
	}

	value, ttl, ok, err := c.durable.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Durable tier read failed, treating as miss", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	_ = c.volatile.Set(ctx, key, value, ttl)

	return value, true
}

// Set stores value under key. A non-positive ttl selects the configured
// default. The volatile write always succeeds; the durable write is
// best-effort.
func (c *ResponseCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	_ = c.volatile.Set(ctx, key, value, ttl)

	if c.durable == nil {
		return
	}
	if err := c.durable.Set(ctx, key, value, ttl); err != nil {
		c.logger.Warn("Durable tier write failed, entry is volatile only", "key", key, "error", err)
	}
}

// Invalidate removes every volatile-tier entry whose key contains pattern as a
// substring and returns the removed count. The durable tier is not enumerated,
// so its entries age out by TTL instead.
func (c *ResponseCache) Invalidate(pattern string) int {
	removed := c.volatile.Invalidate(pattern)
	c.logger.Debug("Invalidated cache entries", "pattern", pattern, "removed", removed)

	return removed
}

// Clear empties the volatile tier.
func (c *ResponseCache) Clear() {
	c.volatile.Clear()
}

// Stats reports current cache statistics.
func (c *ResponseCache) Stats() Stats {
	return Stats{VolatileEntries: c.volatile.Len()}
}
