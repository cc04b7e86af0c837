package get_available_slots

import "errors"

var (
	// ErrInvalidScheduleConfig is returned when the configured business
	// hours or slot duration cannot produce a slot grid.
	ErrInvalidScheduleConfig = errors.New("get_available_slots: invalid schedule configuration")

	// ErrBarberNotFound is returned when the barber filter matches nothing.
	ErrBarberNotFound = errors.New("get_available_slots: barber not found")

	// ErrServiceNotFound is returned when the service filter matches nothing.
	ErrServiceNotFound = errors.New("get_available_slots: service not found")

	// ErrInvalidInput is returned on malformed request data.
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal is returned on unexpected failures.
	ErrInternal = errors.New("get_available_slots: internal error")
)
