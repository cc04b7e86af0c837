package models

import (
	"time"

	"github.com/bookedbarber/booking-service/internal/domain"
)

// AppointmentResponse is the outward projection of an appointment.
type AppointmentResponse struct {
	ID                     int64      `json:"id"`
	ShopID                 int64      `json:"shopId"`
	BarberID               int64      `json:"barberId"`
	ServiceID              int64      `json:"serviceId"`
	ClientID               *int64     `json:"clientId,omitempty"`
	ClientName             string     `json:"clientName"`
	ClientPhone            string     `json:"clientPhone,omitempty"`
	StartTime              time.Time  `json:"startTime"`
	EndTime                time.Time  `json:"endTime"`
	Status                 string     `json:"status"`
	ServiceName            string     `json:"serviceName"`
	ServiceDurationMinutes int        `json:"serviceDurationMinutes"`
	ServicePrice           float64    `json:"servicePrice"`
	Notes                  *string    `json:"notes,omitempty"`
	CancellationReason     *string    `json:"cancellationReason,omitempty"`
	CancelledAt            *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
}

// AppointmentListResponse wraps a list of appointments.
type AppointmentListResponse struct {
	Appointments []*AppointmentResponse `json:"appointments"`
	Total        int                    `json:"total"`
}

// GetBarberAppointmentsRequest filters one barber's appointments.
type GetBarberAppointmentsRequest struct {
	ShopID   int64
	BarberID int64
	Date     *time.Time
	Status   *string
}

// FromDomainAppointment converts a domain appointment to its response form.
func FromDomainAppointment(ap *domain.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:                     ap.ID,
		ShopID:                 ap.ShopID,
		BarberID:               ap.BarberID,
		ServiceID:              ap.ServiceID,
		ClientID:               ap.ClientID,
		ClientName:             ap.ClientName,
		ClientPhone:            ap.ClientPhone,
		StartTime:              ap.StartTime,
		EndTime:                ap.EndTime,
		Status:                 string(ap.Status),
		ServiceName:            ap.ServiceName,
		ServiceDurationMinutes: ap.ServiceDurationMinutes,
		ServicePrice:           ap.ServicePrice,
		Notes:                  ap.Notes,
		CancellationReason:     ap.CancellationReason,
		CancelledAt:            ap.CancelledAt,
		CreatedAt:              ap.CreatedAt,
		UpdatedAt:              ap.UpdatedAt,
	}
}

// FromDomainAppointmentList converts a list of domain appointments.
func FromDomainAppointmentList(aps []*domain.Appointment) *AppointmentListResponse {
	out := make([]*AppointmentResponse, 0, len(aps))
	for _, ap := range aps {
		out = append(out, FromDomainAppointment(ap))
	}
	return &AppointmentListResponse{Appointments: out, Total: len(out)}
}

// ToDomainStatus parses an outward status string.
func ToDomainStatus(s string) (domain.AppointmentStatus, bool) {
	status := domain.AppointmentStatus(s)
	switch status {
	case domain.StatusPending, domain.StatusConfirmed, domain.StatusCompleted,
		domain.StatusCancelled, domain.StatusNoShow:
		return status, true
	}
	return "", false
}
