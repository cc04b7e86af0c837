package slotcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bookedbarber/booking-service/internal/domain"
)

const redisStore = "redis"

// RedisCache is the production Cache implementation backed by Redis, shared
// across service instances. All store failures degrade: reads become misses,
// writes and invalidations become logged no-ops. CacheUnavailable never
// reaches a caller.
type RedisCache struct {
	client   *redis.Client
	logger   Logger
	recorder Recorder
}

// NewRedisCache creates a RedisCache over an initialized client.
func NewRedisCache(client *redis.Client, logger Logger, recorder Recorder) *RedisCache {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &RedisCache{client: client, logger: logger, recorder: recorder}
}

// Get returns the cached entry, treating every store error as a miss.
func (c *RedisCache) Get(ctx context.Context, key Key) (*domain.SlotCacheEntry, bool) {
	raw, err := c.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		c.recorder.IncCacheMiss(redisStore)
		return nil, false
	}
	if err != nil {
		c.logger.Warn("slotcache: get %s failed, treating as miss: %v", key.String(), err)
		c.recorder.IncCacheDegraded(redisStore, "get")
		return nil, false
	}

	var entry domain.SlotCacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// A corrupt entry is as good as a miss; drop it so it gets recomputed.
		c.logger.Warn("slotcache: corrupt entry at %s, dropping: %v", key.String(), err)
		c.client.Del(ctx, key.String())
		c.recorder.IncCacheMiss(redisStore)
		return nil, false
	}

	c.recorder.IncCacheHit(redisStore)
	return &entry, true
}

// Put stores the entry with a TTL backstop.
func (c *RedisCache) Put(ctx context.Context, key Key, entry *domain.SlotCacheEntry, ttl time.Duration) {
	raw, err := json.Marshal(entry)
	if err != nil {
		c.logger.Error("slotcache: marshal entry for %s: %v", key.String(), err)
		return
	}

	if err := c.client.Set(ctx, key.String(), raw, ttl).Err(); err != nil {
		c.logger.Warn("slotcache: put %s failed, skipping: %v", key.String(), err)
		c.recorder.IncCacheDegraded(redisStore, "put")
	}
}

// Invalidate removes the barber-specific and aggregate entries for the date.
func (c *RedisCache) Invalidate(ctx context.Context, shopID, barberID int64, date time.Time) {
	for _, prefix := range invalidationPrefixes(shopID, barberID, date) {
		if err := c.deleteByPrefix(ctx, prefix); err != nil {
			c.logger.Warn("slotcache: invalidate %s* failed, TTL will expire it: %v", prefix, err)
			c.recorder.IncCacheDegraded(redisStore, "invalidate")
		}
	}
}

// InvalidateRange invalidates each date in [from, to].
func (c *RedisCache) InvalidateRange(ctx context.Context, shopID, barberID int64, from, to time.Time) {
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		c.Invalidate(ctx, shopID, barberID, d)
	}
}

func (c *RedisCache) deleteByPrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	keys := make([]string, 0, 4)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
