package domain

import (
	"time"
)

// AppointmentStatus represents the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
)

// Appointment represents a booked slot for a barber. Appointments are never
// physically deleted: cancellation and no-show are status transitions, and
// only blocking statuses participate in overlap checks.
type Appointment struct {
	ID        int64
	ShopID    int64
	BarberID  int64
	ServiceID int64

	// ClientID is nil for guest bookings; guests are identified by the
	// denormalized contact fields below.
	ClientID    *int64
	ClientName  string
	ClientPhone string

	// StartTime and EndTime are timezone-aware instants. EndTime is derived
	// from the service duration at creation and reschedule time.
	StartTime time.Time
	EndTime   time.Time

	Status AppointmentStatus

	// Denormalized service data for history; the catalog row may change or
	// disappear after booking.
	ServiceName            string
	ServiceDurationMinutes int
	ServicePrice           float64

	Notes *string

	// ExternalCalendarID links the appointment to an entry created by the
	// calendar-sync collaborator, when one exists.
	ExternalCalendarID *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsBlocking reports whether the appointment occupies its interval for
// overlap purposes.
func (a *Appointment) IsBlocking() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// IsTerminal reports whether the appointment reached a final state.
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusCancelled || a.Status == StatusNoShow
}

// CanBeCancelled reports whether a cancel transition is allowed.
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanBeRescheduled reports whether the appointment may move to a new interval.
func (a *Appointment) CanBeRescheduled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanTransitionTo validates a status change against the lifecycle machine:
// pending -> confirmed, and pending|confirmed -> completed|cancelled|no_show.
// Terminal states accept no further transitions.
func (a *Appointment) CanTransitionTo(next AppointmentStatus) bool {
	if a.IsTerminal() {
		return false
	}
	switch next {
	case StatusConfirmed:
		return a.Status == StatusPending
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return a.Status == StatusPending || a.Status == StatusConfirmed
	default:
		return false
	}
}

// Overlaps reports whether the appointment interval intersects [start, end)
// using half-open comparison: touching boundaries do not overlap.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && a.EndTime.After(start)
}

// AppointmentsFilter narrows appointment listings.
type AppointmentsFilter struct {
	BarberID *int64
	ShopID   *int64
	// DayStart/DayEnd bound the interval [DayStart, DayEnd) for the listing.
	DayStart *time.Time
	DayEnd   *time.Time
	Status   *AppointmentStatus
	// BlockingOnly restricts to statuses that occupy their interval.
	BlockingOnly bool
}
