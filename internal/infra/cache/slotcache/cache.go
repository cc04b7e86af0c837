package slotcache

import (
	"context"
	"fmt"
	"time"

	"github.com/bookedbarber/booking-service/internal/domain"
)

// anyBarber is the key segment for aggregate ("any barber") availability.
const anyBarber = "any"

// keyPrefix namespaces all slot cache keys in a shared store.
const keyPrefix = "slots"

// Key identifies one cached availability computation. BarberID nil means the
// aggregate view; ServiceID nil means the default slot duration was used.
type Key struct {
	ShopID    int64
	BarberID  *int64
	ServiceID *int64
	Date      time.Time
}

// String renders the storage key. The service segment comes last so that all
// keys for a (shop, barber, date) triple share a prefix and can be
// invalidated together regardless of service filter.
func (k Key) String() string {
	barber := anyBarber
	if k.BarberID != nil {
		barber = fmt.Sprintf("%d", *k.BarberID)
	}
	service := "0"
	if k.ServiceID != nil {
		service = fmt.Sprintf("%d", *k.ServiceID)
	}
	return fmt.Sprintf("%s:%d:%s:%s:%s", keyPrefix, k.ShopID, barber, k.Date.Format(domain.DateFormat), service)
}

// invalidationPrefixes returns the key prefixes cleared when a mutation
// touches (shopID, barberID, date): the barber-specific keys and the
// aggregate keys, for every service filter.
func invalidationPrefixes(shopID, barberID int64, date time.Time) []string {
	day := date.Format(domain.DateFormat)
	return []string{
		fmt.Sprintf("%s:%d:%d:%s:", keyPrefix, shopID, barberID, day),
		fmt.Sprintf("%s:%d:%s:%s:", keyPrefix, shopID, anyBarber, day),
	}
}

// Cache is the coherence layer in front of the availability computation.
//
// Implementations must absorb store failures: Get behaves as a miss, Put and
// Invalidate become logged no-ops. The booking path stays correct with the
// cache fully disabled, only slower, because the conflict guard never trusts
// cached data.
type Cache interface {
	// Get returns the cached entry for the key, or false on miss.
	Get(ctx context.Context, key Key) (*domain.SlotCacheEntry, bool)

	// Put stores an entry with the given TTL. TTL is a backstop against
	// missed invalidations; coherence relies on explicit Invalidate calls.
	Put(ctx context.Context, key Key, entry *domain.SlotCacheEntry, ttl time.Duration)

	// Invalidate removes every entry a mutation of (shop, barber, date)
	// could have made stale, including the aggregate view.
	Invalidate(ctx context.Context, shopID, barberID int64, date time.Time)

	// InvalidateRange invalidates each date in [from, to].
	InvalidateRange(ctx context.Context, shopID, barberID int64, from, to time.Time)
}

// Logger is the logging surface cache implementations need.
type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Recorder observes cache effectiveness. Satisfied by *metrics.Metrics.
type Recorder interface {
	IncCacheHit(store string)
	IncCacheMiss(store string)
	IncCacheDegraded(store, operation string)
}

// NopRecorder is used when metrics are disabled.
type NopRecorder struct{}

func (NopRecorder) IncCacheHit(string)              {}
func (NopRecorder) IncCacheMiss(string)             {}
func (NopRecorder) IncCacheDegraded(string, string) {}
