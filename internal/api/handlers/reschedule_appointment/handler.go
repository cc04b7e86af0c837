package reschedule_appointment

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/bookedbarber/booking-service/internal/api/handlers"
	"github.com/bookedbarber/booking-service/internal/api/middleware"
	rescheduleAppointment "github.com/bookedbarber/booking-service/internal/usecase/reschedule_appointment"
)

const (
	msgInvalidAppointmentID = "invalid appointment ID"
	msgInvalidRequestBody   = "invalid request body"
	msgInvalidDateOrTime    = "invalid date or start time, expected YYYY-MM-DD and HH:MM"
	msgAppointmentNotFound  = "appointment not found"
	msgForbidden            = "appointment belongs to another client"
	msgMissingUser          = "missing authenticated user"
	msgSlotConflict         = "the requested slot is no longer available"
	msgBookingTimeout       = "booking could not complete in time, please retry"
)

type Handler struct {
	useCase  RescheduleAppointmentUseCase
	location *time.Location
	logger   Logger
}

func NewHandler(useCase RescheduleAppointmentUseCase, location *time.Location, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		location: location,
		logger:   logger,
	}
}

// Handle PATCH /api/v1/appointments/{appointmentId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	appointmentID, err := strconv.ParseInt(vars["appointmentId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req RescheduleAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - No authenticated user in context")
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(appointmentID, actorID, h.location)
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		var conflict *rescheduleAppointment.SlotConflictError
		switch {
		case errors.As(err, &conflict):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Slot conflict: id=%d, %d alternatives",
				appointmentID, len(conflict.Alternatives))
			handlers.RespondJSON(w, http.StatusConflict, ConflictResponse{
				Message:      msgSlotConflict,
				Alternatives: conflict.Alternatives,
			})

		case errors.Is(err, rescheduleAppointment.ErrSlotConflict):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Slot conflict: id=%d", appointmentID)
			handlers.RespondError(w, http.StatusConflict, msgSlotConflict)

		case errors.Is(err, rescheduleAppointment.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Appointment not found: id=%d", appointmentID)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, rescheduleAppointment.ErrForbidden):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Forbidden: id=%d, actor=%d", appointmentID, actorID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, rescheduleAppointment.ErrBookingTimeout):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Booking timeout: id=%d", appointmentID)
			handlers.RespondError(w, http.StatusGatewayTimeout, msgBookingTimeout)

		case errors.Is(err, rescheduleAppointment.ErrInvalidInput):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("PATCH /appointments/{id}/reschedule - Failed: id=%d, error=%v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/reschedule - Moved appointment id=%d", appointmentID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
