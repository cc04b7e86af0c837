package reschedule_appointment

import (
	"errors"
	"fmt"

	"github.com/bookedbarber/booking-service/internal/usecase/create_appointment"
)

var (
	// ErrInvalidInput is returned on malformed or out-of-policy request data.
	ErrInvalidInput = errors.New("reschedule_appointment: invalid input data")

	// ErrAppointmentNotFound is returned when the appointment does not exist
	// or is already in a terminal state.
	ErrAppointmentNotFound = errors.New("reschedule_appointment: appointment not found")

	// ErrForbidden is returned when the acting user does not own the
	// appointment.
	ErrForbidden = errors.New("reschedule_appointment: appointment belongs to another client")

	// ErrSlotConflict is returned when the target interval overlaps another
	// blocking appointment. The original appointment is left untouched.
	ErrSlotConflict = errors.New("reschedule_appointment: slot already booked")

	// ErrBookingTimeout is returned when the transaction could not acquire
	// its locks or complete within the deadline.
	ErrBookingTimeout = errors.New("reschedule_appointment: booking timed out")

	// ErrInternal is returned on unexpected failures.
	ErrInternal = errors.New("reschedule_appointment: internal error")
)

// SlotConflictError wraps ErrSlotConflict with alternatives for the target
// date.
type SlotConflictError struct {
	Alternatives []create_appointment.AlternativeSlot
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("%v (%d alternatives)", ErrSlotConflict, len(e.Alternatives))
}

func (e *SlotConflictError) Unwrap() error {
	return ErrSlotConflict
}
