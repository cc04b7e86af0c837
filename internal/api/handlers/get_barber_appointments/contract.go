package get_barber_appointments

import (
	"context"

	"github.com/bookedbarber/booking-service/internal/service/appointments/models"
)

// AppointmentsService is the read surface the handler uses.
type AppointmentsService interface {
	GetBarberAppointments(ctx context.Context, req *models.GetBarberAppointmentsRequest) (*models.AppointmentListResponse, error)
}

// Logger is the logging surface of the handler.
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
