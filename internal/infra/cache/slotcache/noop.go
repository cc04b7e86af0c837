package slotcache

import (
	"context"
	"time"

	"github.com/bookedbarber/booking-service/internal/domain"
)

// NoopCache disables caching entirely: every read is a miss and writes are
// discarded. Used when the cache is switched off in config; the engine is
// correct without a cache, only slower.
type NoopCache struct{}

// NewNoopCache creates a NoopCache.
func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (NoopCache) Get(context.Context, Key) (*domain.SlotCacheEntry, bool) { return nil, false }

func (NoopCache) Put(context.Context, Key, *domain.SlotCacheEntry, time.Duration) {}

func (NoopCache) Invalidate(context.Context, int64, int64, time.Time) {}

func (NoopCache) InvalidateRange(context.Context, int64, int64, time.Time, time.Time) {}
