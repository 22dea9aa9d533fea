// Package cache caches search result pages in Redis. Concurrent identical
// queries are collapsed through singleflight so a popular query hits the
// executor once per TTL window.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ppenja/youtube-transcript-archive/internal/search/executor"
	"github.com/ppenja/youtube-transcript-archive/internal/search/parser"
	"github.com/ppenja/youtube-transcript-archive/pkg/redis"
)

const keyPrefix = "search:"

// Loader computes a result page on cache miss.
type Loader func(ctx context.Context) (*executor.Result, error)

// Stats is a point-in-time view of cache effectiveness.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Errors uint64 `json:"errors"`
}

// Cache is a read-through search cache. A nil Redis client disables caching:
// every call goes straight to the loader (still singleflight-collapsed).
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
	errors atomic.Uint64
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: slog.Default().With("component", "search-cache"),
	}
}

// Key derives a deterministic cache key from the normalised plan and page.
// Terms are already ordered by the parser, so equal plans hash equally.
func Key(plan parser.Plan, limit, offset int) string {
	payload := fmt.Sprintf("%s|%s|%d|%d",
		strings.Join(plan.Terms, " "), plan.ChannelID, limit, offset)
	sum := sha256.Sum256([]byte(payload))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached page for the plan, computing and storing it through
// load on a miss. The boolean reports whether the page came from Redis.
func (c *Cache) Get(ctx context.Context, plan parser.Plan, limit, offset int, load Loader) (*executor.Result, bool, error) {
	key := Key(plan, limit, offset)

	if c.client != nil {
		raw, err := c.client.Get(ctx, key)
		if err == nil {
			var result executor.Result
			if err := json.Unmarshal([]byte(raw), &result); err == nil {
				c.hits.Add(1)
				return &result, true, nil
			}
			c.logger.Warn("discarding undecodable cache entry", "key", key)
			_ = c.client.Del(ctx, key)
		} else if !redis.IsNilError(err) {
			c.errors.Add(1)
			c.logger.Warn("cache read failed, falling through", "error", err)
		}
	}
	c.misses.Add(1)

	value, err, _ := c.group.Do(key, func() (any, error) {
		result, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return value.(*executor.Result), false, nil
}

func (c *Cache) store(ctx context.Context, key string, result *executor.Result) {
	if c.client == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("failed to marshal result for cache", "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl); err != nil {
		c.errors.Add(1)
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// Invalidate drops every cached search page. Called when the index content
// changes; page-level invalidation is not worth the bookkeeping since any
// ingest can reorder any result page.
func (c *Cache) Invalidate(ctx context.Context) (int64, error) {
	if c.client == nil {
		return 0, nil
	}
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating search cache: %w", err)
	}
	if deleted > 0 {
		c.logger.Info("search cache invalidated", "keys", deleted)
	}
	return deleted, nil
}

// Stats returns cumulative hit/miss/error counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Errors: c.errors.Load(),
	}
}
