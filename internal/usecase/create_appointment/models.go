package create_appointment

import (
	"time"

	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/pkg/types"
)

// Request carries the booking attempt.
type Request struct {
	ShopID      int64
	BarberID    int64
	ServiceID   int64
	ClientID    *int64
	ClientName  string
	ClientPhone string
	Date        time.Time
	StartTime   types.TimeString
	Notes       string
}

// Response carries the persisted appointment.
type Response struct {
	Appointment *domain.Appointment
}

// AlternativeSlot is one still-available slot offered alongside a conflict.
type AlternativeSlot struct {
	Time            types.TimeString `json:"time"`
	DurationMinutes int              `json:"durationMinutes"`
	IsNextAvailable bool             `json:"isNextAvailable"`
}
