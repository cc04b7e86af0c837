package domain

import "github.com/bookedbarber/booking-service/pkg/types"

// BookingPolicy is the externally owned scheduling policy the engine reads at
// the start of each availability computation: business hours, slot step and
// minimum lead time. The engine never mutates it.
type BookingPolicy struct {
	BusinessHoursStart  types.TimeString
	BusinessHoursEnd    types.TimeString
	SlotDurationMinutes int
	MinLeadTimeMinutes  int
}

// Barber is a bookable staff member. Managed by the staff-facing side; the
// scheduling engine only reads it.
type Barber struct {
	ID     int64
	ShopID int64
	Name   string
	Active bool
}

// Service is a bookable offering with a fixed duration. Managed externally,
// read-only here. DurationMinutes drives the appointment end time.
type Service struct {
	ID              int64
	ShopID          int64
	Name            string
	DurationMinutes int
	Price           float64
	Active          bool
}
