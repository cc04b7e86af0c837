package appointments

import "errors"

var (
	// ErrAppointmentNotFound is returned when the appointment does not exist
	// or is already in a terminal state.
	ErrAppointmentNotFound = errors.New("appointments: appointment not found")

	// ErrInvalidTransition is returned when the requested status change is
	// not allowed by the lifecycle state machine.
	ErrInvalidTransition = errors.New("appointments: invalid status transition")

	// ErrInvalidInput is returned on malformed request data.
	ErrInvalidInput = errors.New("appointments: invalid input data")

	// ErrForbidden is returned when the acting user does not own the
	// appointment they are trying to mutate.
	ErrForbidden = errors.New("appointments: appointment belongs to another client")

	// ErrInternal is returned on unexpected failures.
	ErrInternal = errors.New("appointments: internal error")
)
