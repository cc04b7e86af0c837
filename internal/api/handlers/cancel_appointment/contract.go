package cancel_appointment

import (
	"context"

	"github.com/bookedbarber/booking-service/internal/service/appointments/models"
)

// AppointmentsService is the lifecycle surface the handler uses.
type AppointmentsService interface {
	Cancel(ctx context.Context, id, actorID int64, reason string) (*models.AppointmentResponse, error)
}

// Logger is the logging surface of the handler.
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
