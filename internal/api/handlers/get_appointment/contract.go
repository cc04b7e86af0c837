package get_appointment

import (
	"context"

	"github.com/bookedbarber/booking-service/internal/service/appointments/models"
)

// AppointmentsService is the read surface the handler uses.
type AppointmentsService interface {
	GetByID(ctx context.Context, id int64) (*models.AppointmentResponse, error)
}

// Logger is the logging surface of the handler.
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
