package create_appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/bookedbarber/booking-service/internal/api/handlers"
	"github.com/bookedbarber/booking-service/internal/api/middleware"
	createAppointment "github.com/bookedbarber/booking-service/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgInvalidDateOrTime  = "invalid date or start time, expected YYYY-MM-DD and HH:MM"
	msgSlotConflict       = "the requested slot is no longer available"
	msgBarberNotFound     = "barber not found"
	msgServiceNotFound    = "service not found"
	msgBookingTimeout     = "booking could not complete in time, please retry"
)

type Handler struct {
	useCase  CreateAppointmentUseCase
	location *time.Location
	logger   Logger
}

func NewHandler(useCase CreateAppointmentUseCase, location *time.Location, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		location: location,
		logger:   logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	var clientID *int64
	if id, ok := middleware.UserIDFromContext(r.Context()); ok {
		clientID = &id
	}

	useCaseReq, err := req.ToUseCaseRequest(clientID, h.location)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		var conflict *createAppointment.SlotConflictError
		switch {
		case errors.As(err, &conflict):
			h.logger.Warn("POST /appointments - Slot conflict: shop_id=%d, barber_id=%d, %d alternatives",
				req.ShopID, req.BarberID, len(conflict.Alternatives))
			handlers.RespondJSON(w, http.StatusConflict, ConflictResponse{
				Message:      msgSlotConflict,
				Alternatives: conflict.Alternatives,
			})

		case errors.Is(err, createAppointment.ErrSlotConflict):
			h.logger.Warn("POST /appointments - Slot conflict: shop_id=%d, barber_id=%d", req.ShopID, req.BarberID)
			handlers.RespondError(w, http.StatusConflict, msgSlotConflict)

		case errors.Is(err, createAppointment.ErrBarberNotFound):
			h.logger.Warn("POST /appointments - Barber not found: barber_id=%d", req.BarberID)
			handlers.RespondNotFound(w, msgBarberNotFound)

		case errors.Is(err, createAppointment.ErrServiceNotFound):
			h.logger.Warn("POST /appointments - Service not found: service_id=%d", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createAppointment.ErrBookingTimeout):
			h.logger.Warn("POST /appointments - Booking timeout: shop_id=%d, barber_id=%d", req.ShopID, req.BarberID)
			handlers.RespondError(w, http.StatusGatewayTimeout, msgBookingTimeout)

		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Created appointment id=%d", result.Appointment.ID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
