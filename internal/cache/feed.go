// Package cache provides the Redis-backed feed cache. Ranked feed pages
// are served from here between recomputes; the ranking engine invalidates
// the cache after every run.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"

	"github.com/openreel/crewdeck/internal/ranking"
)

// feedKey is the Redis key holding the serialized ranked feed.
const feedKey = "feed:scores"

// DefaultTTL bounds staleness when invalidation is missed.
const DefaultTTL = 5 * time.Minute

// FeedCache caches the ranked feed in Redis, serialized as CBOR. A nil
// client disables the cache; every method then degrades to a miss or
// no-op so callers never branch on configuration.
type FeedCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewFeedCache creates a feed cache. client may be nil when Redis is not
// configured.
func NewFeedCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *FeedCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Enabled reports whether a Redis client is configured.
func (c *FeedCache) Enabled() bool {
	return c != nil && c.client != nil
}

// GetScores returns the cached ranked feed and whether it was present.
// Redis errors are logged and surface as a miss.
func (c *FeedCache) GetScores(ctx context.Context) ([]ranking.Score, bool) {
	if !c.Enabled() {
		return nil, false
	}

	payload, err := c.client.Get(ctx, feedKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Error("failed to read feed cache", "error", err)
		}
		return nil, false
	}

	var scores []ranking.Score
	if err := cbor.Unmarshal(payload, &scores); err != nil {
		c.logger.Error("failed to decode feed cache payload", "error", err)
		return nil, false
	}
	return scores, true
}

// SetScores stores the ranked feed with the configured TTL. Failures are
// logged; the caller already has the scores and loses nothing.
func (c *FeedCache) SetScores(ctx context.Context, scores []ranking.Score) {
	if !c.Enabled() {
		return
	}

	payload, err := cbor.Marshal(scores)
	if err != nil {
		c.logger.Error("failed to encode feed cache payload", "error", err)
		return
	}
	if err := c.client.Set(ctx, feedKey, payload, c.ttl).Err(); err != nil {
		c.logger.Error("failed to write feed cache", "error", err)
	}
}

// InvalidateFeed drops the cached feed. Satisfies ranking.FeedInvalidator.
func (c *FeedCache) InvalidateFeed(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}

	if err := c.client.Del(ctx, feedKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate feed cache: %w", err)
	}
	return nil
}
