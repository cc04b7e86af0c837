package events

import "time"

// Type enumerates the domain events the engine emits.
type Type string

const (
	TypeBookingCreated     Type = "booking_created"
	TypeBookingCancelled   Type = "booking_cancelled"
	TypeBookingRescheduled Type = "booking_rescheduled"
)

// Event is a booking lifecycle notification for external collaborators
// (notification delivery, calendar sync). Emission is fire-and-forget: the
// booking transaction is the source of truth and never waits on, or rolls
// back for, a subscriber.
type Event struct {
	Type          Type
	AppointmentID int64
	ShopID        int64
	BarberID      int64
	StartTime     time.Time
	EndTime       time.Time

	// PreviousStartTime is set for reschedules.
	PreviousStartTime *time.Time

	OccurredAt time.Time
}
