package get_available_slots

import (
	"context"

	getAvailableSlots "github.com/bookedbarber/booking-service/internal/usecase/get_available_slots"
)

// GetAvailableSlotsUseCase computes the slot grid for one date.
type GetAvailableSlotsUseCase interface {
	Execute(ctx context.Context, req getAvailableSlots.Request) (*getAvailableSlots.Response, error)
}

// Logger is the logging surface of the handler.
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
