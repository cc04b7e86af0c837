package create_appointment

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned on malformed or out-of-policy request data.
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrBarberNotFound is returned when the barber does not exist, is
	// inactive, or belongs to another shop.
	ErrBarberNotFound = errors.New("create_appointment: barber not found")

	// ErrServiceNotFound is returned when the service does not exist or the
	// barber does not offer it.
	ErrServiceNotFound = errors.New("create_appointment: service not found")

	// ErrSlotConflict is returned when the requested interval overlaps a
	// blocking appointment. Exactly one of a set of concurrent requests for
	// the same slot succeeds; the rest receive this error.
	ErrSlotConflict = errors.New("create_appointment: slot already booked")

	// ErrBookingTimeout is returned when the transaction could not acquire
	// its locks or complete within the deadline. The caller may safely retry.
	ErrBookingTimeout = errors.New("create_appointment: booking timed out")

	// ErrInternal is returned on unexpected failures.
	ErrInternal = errors.New("create_appointment: internal error")
)

// SlotConflictError wraps ErrSlotConflict with a freshly computed set of
// alternative slots for the same date.
type SlotConflictError struct {
	Alternatives []AlternativeSlot
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("%v (%d alternatives)", ErrSlotConflict, len(e.Alternatives))
}

func (e *SlotConflictError) Unwrap() error {
	return ErrSlotConflict
}
