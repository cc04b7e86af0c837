package update_appointment_status

import (
	"context"

	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/internal/service/appointments/models"
)

// AppointmentsService is the lifecycle surface the handler uses.
type AppointmentsService interface {
	UpdateStatus(ctx context.Context, id, actorID int64, target domain.AppointmentStatus) (*models.AppointmentResponse, error)
}

// Logger is the logging surface of the handler.
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
