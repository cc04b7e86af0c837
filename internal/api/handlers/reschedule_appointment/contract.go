package reschedule_appointment

import (
	"context"

	rescheduleAppointment "github.com/bookedbarber/booking-service/internal/usecase/reschedule_appointment"
)

// RescheduleAppointmentUseCase moves one appointment to a new interval.
type RescheduleAppointmentUseCase interface {
	Execute(ctx context.Context, req *rescheduleAppointment.Request) (*rescheduleAppointment.Response, error)
}

// Logger is the logging surface of the handler.
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
