package create_appointment

import (
	"time"

	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/internal/service/appointments/models"
	createAppointment "github.com/bookedbarber/booking-service/internal/usecase/create_appointment"
	"github.com/bookedbarber/booking-service/pkg/types"
)

// CreateAppointmentRequest is the HTTP request body.
type CreateAppointmentRequest struct {
	ShopID      int64  `json:"shopId"`
	BarberID    int64  `json:"barberId"`
	ServiceID   int64  `json:"serviceId"`
	ClientName  string `json:"clientName"`
	ClientPhone string `json:"clientPhone,omitempty"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	Notes       string `json:"notes,omitempty"`
}

// ConflictResponse is the 409 payload: the refusal plus a fresh view of what
// is still bookable on the same date.
type ConflictResponse struct {
	Message      string                              `json:"message"`
	Alternatives []createAppointment.AlternativeSlot `json:"alternatives"`
}

// ToUseCaseRequest parses the body into a use case request. The authenticated
// client ID comes from the request context, not the body.
func (r *CreateAppointmentRequest) ToUseCaseRequest(clientID *int64, loc *time.Location) (*createAppointment.Request, error) {
	date, err := time.ParseInLocation(domain.DateFormat, r.Date, loc)
	if err != nil {
		return nil, err
	}
	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}
	return &createAppointment.Request{
		ShopID:      r.ShopID,
		BarberID:    r.BarberID,
		ServiceID:   r.ServiceID,
		ClientID:    clientID,
		ClientName:  r.ClientName,
		ClientPhone: r.ClientPhone,
		Date:        date,
		StartTime:   startTime,
		Notes:       r.Notes,
	}, nil
}

// FromUseCaseResponse converts the created appointment to its HTTP form.
func FromUseCaseResponse(resp *createAppointment.Response) *models.AppointmentResponse {
	return models.FromDomainAppointment(resp.Appointment)
}
