package domain

import (
	"time"

	"github.com/bookedbarber/booking-service/pkg/types"
)

// Slot is one candidate interval in a day's grid with its computed
// availability. In aggregate ("any barber") mode BarberIDs lists the barbers
// free at that time.
type Slot struct {
	Time            types.TimeString `json:"time"`
	DurationMinutes int              `json:"durationMinutes"`
	Available       bool             `json:"available"`
	IsNextAvailable bool             `json:"isNextAvailable"`
	BarberIDs       []int64          `json:"barberIds,omitempty"`
}

// SlotCacheEntry is the cached projection of one availability computation.
// It is derived, disposable data: the appointments table stays authoritative
// and the entry is invalidated whenever a mutation touches its key.
type SlotCacheEntry struct {
	Slots      []Slot    `json:"slots"`
	ComputedAt time.Time `json:"computedAt"`
}

// NextAvailable returns the earliest available slot, if any.
func (e *SlotCacheEntry) NextAvailable() (Slot, bool) {
	for _, s := range e.Slots {
		if s.Available {
			return s, true
		}
	}
	return Slot{}, false
}

// MarkNextAvailable clears any previous flag and sets IsNextAvailable on the
// earliest available slot. Exactly one slot carries the flag when any slot is
// available.
func MarkNextAvailable(slots []Slot) {
	marked := false
	for i := range slots {
		slots[i].IsNextAvailable = false
		if !marked && slots[i].Available {
			slots[i].IsNextAvailable = true
			marked = true
		}
	}
}
