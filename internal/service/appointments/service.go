package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/internal/events"
	appointmentStorage "github.com/bookedbarber/booking-service/internal/infra/storage/appointment"
	"github.com/bookedbarber/booking-service/internal/service/appointments/models"
	"github.com/bookedbarber/booking-service/pkg/ptr"
)

// Service is the appointment lifecycle manager. It owns the status machine
// (pending -> confirmed -> completed/cancelled/no_show) and keeps the slot
// cache coherent when a transition frees an interval.
type Service struct {
	appointmentRepo AppointmentRepository
	cache           CacheInvalidator
	dispatcher      EventDispatcher
	txManager       TransactionManager
	timeProvider    TimeProvider
	location        *time.Location
	logger          Logger
}

func NewService(
	appointmentRepo AppointmentRepository,
	cache CacheInvalidator,
	dispatcher EventDispatcher,
	txManager TransactionManager,
	location *time.Location,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		cache:           cache,
		dispatcher:      dispatcher,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		location:        location,
		logger:          logger,
	}
}

// GetByID fetches one appointment.
func (s *Service) GetByID(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d", id)

	ap, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentStorage.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointment(ap), nil
}

// GetBarberAppointments lists a barber's appointments, optionally narrowed to
// one date and one status.
func (s *Service) GetBarberAppointments(ctx context.Context, req *models.GetBarberAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetBarberAppointments: shop=%d, barber=%d", req.ShopID, req.BarberID)

	if req.ShopID <= 0 || req.BarberID <= 0 {
		return nil, fmt.Errorf("%w: shopID and barberID must be positive", ErrInvalidInput)
	}

	filter := domain.AppointmentsFilter{
		ShopID:   ptr.Ptr(req.ShopID),
		BarberID: ptr.Ptr(req.BarberID),
	}
	if req.Date != nil {
		d := *req.Date
		dayStart := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
		filter.DayStart = ptr.Ptr(dayStart)
		filter.DayEnd = ptr.Ptr(dayStart.AddDate(0, 0, 1))
	}
	if req.Status != nil {
		status, ok := models.ToDomainStatus(*req.Status)
		if !ok {
			s.logger.Warn("GetBarberAppointments: invalid status=%s", *req.Status)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	aps, err := s.appointmentRepo.ListWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetBarberAppointments: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetBarberAppointments - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointmentList(aps), nil
}

// Cancel moves the appointment to cancelled and frees its slot. Cancelling a
// missing or already terminal appointment reports not found; cancelling
// another client's appointment is forbidden. Walk-in appointments carry no
// client ID and stay open to any authenticated actor.
func (s *Service) Cancel(ctx context.Context, id, actorID int64, reason string) (*models.AppointmentResponse, error) {
	s.logger.Info("Cancel: cancelling appointment id=%d, actor=%d", id, actorID)

	var cancelled *domain.Appointment

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		ap, err := s.appointmentRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, appointmentStorage.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}
		if ap.ClientID != nil && *ap.ClientID != actorID {
			return ErrForbidden
		}
		if !ap.CanBeCancelled() {
			return ErrAppointmentNotFound
		}

		if err := s.appointmentRepo.Cancel(txCtx, id, reason); err != nil {
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		now := s.timeProvider.Now()
		ap.Status = domain.StatusCancelled
		if reason != "" {
			ap.CancellationReason = ptr.Ptr(reason)
		}
		ap.CancelledAt = &now
		cancelled = ap
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			s.logger.Warn("Cancel: appointment id=%d not found or terminal", id)
		case errors.Is(err, ErrForbidden):
			s.logger.Warn("Cancel: actor=%d does not own appointment id=%d", actorID, id)
		default:
			s.logger.Error("Cancel: %v", err)
		}
		return nil, err
	}

	// The freed interval becomes bookable only after the cache entry for its
	// date is gone.
	// Stored start times carry the driver's location; the cache keys by
	// shop-local date.
	s.cache.Invalidate(ctx, cancelled.ShopID, cancelled.BarberID, cancelled.StartTime.In(s.location))
	s.dispatcher.Dispatch(events.Event{
		Type:          events.TypeBookingCancelled,
		AppointmentID: cancelled.ID,
		ShopID:        cancelled.ShopID,
		BarberID:      cancelled.BarberID,
		StartTime:     cancelled.StartTime,
		EndTime:       cancelled.EndTime,
		OccurredAt:    s.timeProvider.Now(),
	})

	s.logger.Info("Cancel: cancelled appointment id=%d", id)
	return models.FromDomainAppointment(cancelled), nil
}

// UpdateStatus applies one lifecycle transition on behalf of the acting
// user. Transitions into cancelled go through Cancel so the slot is freed
// with a reason recorded.
func (s *Service) UpdateStatus(ctx context.Context, id, actorID int64, target domain.AppointmentStatus) (*models.AppointmentResponse, error) {
	s.logger.Info("UpdateStatus: appointment id=%d -> %s, actor=%d", id, target, actorID)

	if target == domain.StatusCancelled {
		return s.Cancel(ctx, id, actorID, "")
	}

	var updated *domain.Appointment

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		ap, err := s.appointmentRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, appointmentStorage.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
		}
		if ap.ClientID != nil && *ap.ClientID != actorID {
			return ErrForbidden
		}
		if !ap.CanTransitionTo(target) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, ap.Status, target)
		}

		if err := s.appointmentRepo.UpdateStatus(txCtx, id, target); err != nil {
			return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
		}

		ap.Status = target
		updated = ap
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			s.logger.Warn("UpdateStatus: appointment id=%d not found", id)
		case errors.Is(err, ErrForbidden):
			s.logger.Warn("UpdateStatus: actor=%d does not own appointment id=%d", actorID, id)
		case errors.Is(err, ErrInvalidTransition):
			s.logger.Warn("UpdateStatus: %v", err)
		default:
			s.logger.Error("UpdateStatus: %v", err)
		}
		return nil, err
	}

	// Leaving the blocking set (no_show, completed) frees the interval,
	// so cached availability for that date is stale.
	if !updated.IsBlocking() {
		s.cache.Invalidate(ctx, updated.ShopID, updated.BarberID, updated.StartTime.In(s.location))
	}
	if target == domain.StatusNoShow {
		s.dispatcher.Dispatch(events.Event{
			Type:          events.TypeBookingCancelled,
			AppointmentID: updated.ID,
			ShopID:        updated.ShopID,
			BarberID:      updated.BarberID,
			StartTime:     updated.StartTime,
			EndTime:       updated.EndTime,
			OccurredAt:    s.timeProvider.Now(),
		})
	}

	s.logger.Info("UpdateStatus: appointment id=%d is now %s", id, target)
	return models.FromDomainAppointment(updated), nil
}
