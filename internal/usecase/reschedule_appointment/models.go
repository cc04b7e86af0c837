package reschedule_appointment

import (
	"time"

	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/pkg/types"
)

// Request moves an existing appointment to a new date and start time on
// behalf of ActorID. The duration is preserved from the appointment's
// service.
type Request struct {
	AppointmentID int64
	ActorID       int64
	Date          time.Time
	StartTime     types.TimeString
}

// Response carries the appointment with its new interval.
type Response struct {
	Appointment *domain.Appointment
}
