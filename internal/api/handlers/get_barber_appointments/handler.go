package get_barber_appointments

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/bookedbarber/booking-service/internal/api/handlers"
	"github.com/bookedbarber/booking-service/internal/domain"
	appointmentsService "github.com/bookedbarber/booking-service/internal/service/appointments"
	"github.com/bookedbarber/booking-service/internal/service/appointments/models"
)

const (
	msgInvalidShopID   = "invalid shop ID"
	msgInvalidBarberID = "invalid barber ID"
	msgInvalidDate     = "invalid date format, expected YYYY-MM-DD"
	msgInvalidInput    = "invalid request parameters"
)

type Handler struct {
	service  AppointmentsService
	location *time.Location
	logger   Logger
}

func NewHandler(service AppointmentsService, location *time.Location, logger Logger) *Handler {
	return &Handler{
		service:  service,
		location: location,
		logger:   logger,
	}
}

// Handle GET /api/v1/barbershops/{shopId}/barbers/{barberId}/appointments
// Query params: date (optional, YYYY-MM-DD), status (optional).
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	shopID, err := strconv.ParseInt(vars["shopId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /barbershops/{id}/barbers/{id}/appointments - Invalid shop ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidShopID)
		return
	}

	barberID, err := strconv.ParseInt(vars["barberId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /barbershops/{id}/barbers/{id}/appointments - Invalid barber ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarberID)
		return
	}

	req := &models.GetBarberAppointmentsRequest{
		ShopID:   shopID,
		BarberID: barberID,
	}

	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		date, err := time.ParseInLocation(domain.DateFormat, dateStr, h.location)
		if err != nil {
			h.logger.Warn("GET /barbershops/{id}/barbers/{id}/appointments - Invalid date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		req.Date = &date
	}

	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	result, err := h.service.GetBarberAppointments(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, appointmentsService.ErrInvalidInput):
			h.logger.Warn("GET /barbershops/{id}/barbers/{id}/appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /barbershops/{id}/barbers/{id}/appointments - Failed: shop_id=%d, barber_id=%d, error=%v",
				shopID, barberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /barbershops/{id}/barbers/{id}/appointments - Retrieved %d appointments: shop_id=%d, barber_id=%d",
		result.Total, shopID, barberID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
