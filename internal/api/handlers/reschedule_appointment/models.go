package reschedule_appointment

import (
	"time"

	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/internal/service/appointments/models"
	createAppointment "github.com/bookedbarber/booking-service/internal/usecase/create_appointment"
	rescheduleAppointment "github.com/bookedbarber/booking-service/internal/usecase/reschedule_appointment"
	"github.com/bookedbarber/booking-service/pkg/types"
)

// RescheduleAppointmentRequest is the HTTP request body.
type RescheduleAppointmentRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
}

// ConflictResponse is the 409 payload with fresh alternatives for the target
// date.
type ConflictResponse struct {
	Message      string                              `json:"message"`
	Alternatives []createAppointment.AlternativeSlot `json:"alternatives"`
}

// ToUseCaseRequest parses the body into a use case request.
func (r *RescheduleAppointmentRequest) ToUseCaseRequest(appointmentID, actorID int64, loc *time.Location) (*rescheduleAppointment.Request, error) {
	date, err := time.ParseInLocation(domain.DateFormat, r.Date, loc)
	if err != nil {
		return nil, err
	}
	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}
	return &rescheduleAppointment.Request{
		AppointmentID: appointmentID,
		ActorID:       actorID,
		Date:          date,
		StartTime:     startTime,
	}, nil
}

// FromUseCaseResponse converts the moved appointment to its HTTP form.
func FromUseCaseResponse(resp *rescheduleAppointment.Response) *models.AppointmentResponse {
	return models.FromDomainAppointment(resp.Appointment)
}
