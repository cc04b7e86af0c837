package slotcache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bookedbarber/booking-service/internal/domain"
)

const memoryStore = "memory"

// MemoryCache is an in-process Cache for tests and single-node deployments.
type MemoryCache struct {
	mu       sync.RWMutex
	items    map[string]memoryItem
	recorder Recorder
}

type memoryItem struct {
	entry     domain.SlotCacheEntry
	expiresAt time.Time
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache(recorder Recorder) *MemoryCache {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &MemoryCache{
		items:    make(map[string]memoryItem),
		recorder: recorder,
	}
}

// Get returns the cached entry if present and unexpired.
func (c *MemoryCache) Get(_ context.Context, key Key) (*domain.SlotCacheEntry, bool) {
	c.mu.RLock()
	item, ok := c.items[key.String()]
	c.mu.RUnlock()

	if !ok || time.Now().After(item.expiresAt) {
		c.recorder.IncCacheMiss(memoryStore)
		return nil, false
	}

	c.recorder.IncCacheHit(memoryStore)
	entry := item.entry
	return &entry, true
}

// Put stores a copy of the entry.
func (c *MemoryCache) Put(_ context.Context, key Key, entry *domain.SlotCacheEntry, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key.String()] = memoryItem{
		entry:     *entry,
		expiresAt: time.Now().Add(ttl),
	}
}

// Invalidate removes the barber-specific and aggregate entries for the date.
func (c *MemoryCache) Invalidate(_ context.Context, shopID, barberID int64, date time.Time) {
	prefixes := invalidationPrefixes(shopID, barberID, date)

	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.items {
		for _, prefix := range prefixes {
			if strings.HasPrefix(k, prefix) {
				delete(c.items, k)
				break
			}
		}
	}
}

// InvalidateRange invalidates each date in [from, to].
func (c *MemoryCache) InvalidateRange(ctx context.Context, shopID, barberID int64, from, to time.Time) {
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		c.Invalidate(ctx, shopID, barberID, d)
	}
}

// Len reports the number of stored entries, including expired ones not yet
// overwritten.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
