package create_appointment

import (
	"context"

	createAppointment "github.com/bookedbarber/booking-service/internal/usecase/create_appointment"
)

// CreateAppointmentUseCase books one slot.
type CreateAppointmentUseCase interface {
	Execute(ctx context.Context, req *createAppointment.Request) (*createAppointment.Response, error)
}

// Logger is the logging surface of the handler.
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
