package get_available_slots

import (
	"time"

	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/pkg/types"
)

// Request asks for the bookable slots of one date. BarberID nil requests the
// aggregate ("any barber") view; ServiceID nil evaluates with the default
// slot duration.
type Request struct {
	ShopID    int64
	BarberID  *int64
	ServiceID *int64
	Date      time.Time
}

// BusinessHours echoes the policy the grid was built from.
type BusinessHours struct {
	Start types.TimeString
	End   types.TimeString
}

// Response carries the evaluated slot grid. Exactly one available slot has
// IsNextAvailable set when any slot is available; NextAvailable duplicates
// its time for convenience.
type Response struct {
	Date          time.Time
	ShopID        int64
	BarberID      *int64
	ServiceID     *int64
	BusinessHours BusinessHours
	Slots         []domain.Slot
	NextAvailable *types.TimeString
}
