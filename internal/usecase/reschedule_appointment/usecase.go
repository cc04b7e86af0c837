package reschedule_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/internal/events"
	appointmentStorage "github.com/bookedbarber/booking-service/internal/infra/storage/appointment"
	"github.com/bookedbarber/booking-service/internal/usecase/create_appointment"
	"github.com/bookedbarber/booking-service/pkg/ptr"
	"github.com/bookedbarber/booking-service/pkg/txmanager"
)

const (
	pqLockNotAvailable = "55P03"
	pqQueryCanceled    = "57014"
)

// UseCase atomically moves an appointment to a new interval. Release of the
// old slot and claim of the new one happen in one serializable transaction:
// no intermediate state is ever visible, and on conflict the appointment
// keeps its original interval.
type UseCase struct {
	appointments AppointmentRepository
	schedule     ScheduleRepository
	policy       PolicyProvider
	alternatives AlternativesProvider
	cache        CacheInvalidator
	dispatcher   EventDispatcher
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

func NewUseCase(
	appointments AppointmentRepository,
	schedule ScheduleRepository,
	policy PolicyProvider,
	alternatives AlternativesProvider,
	cache CacheInvalidator,
	dispatcher EventDispatcher,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointments: appointments,
		schedule:     schedule,
		policy:       policy,
		alternatives: alternatives,
		cache:        cache,
		dispatcher:   dispatcher,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute moves the appointment to the requested interval or reports why it
// cannot move. The appointment's service duration is preserved.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleAppointment: id=%d, date=%s, time=%s",
		req.AppointmentID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Validate request shape.
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleAppointment: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	policy := uc.policy.BookingPolicy(ctx)

	newStart, err := req.StartTime.On(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: start time: %v", ErrInvalidInput, err)
	}

	leadTime := time.Duration(policy.MinLeadTimeMinutes) * time.Minute
	if newStart.Before(now.Add(leadTime)) {
		uc.logger.Warn("RescheduleAppointment: target start violates lead time")
		return nil, fmt.Errorf("%w: booking must start at least %d minutes from now",
			ErrInvalidInput, policy.MinLeadTimeMinutes)
	}

	var result *domain.Appointment
	var previousStart time.Time

	// 2. Move inside a serializable transaction. GetByID locks the row, so a
	// concurrent cancel or second reschedule of the same appointment
	// serializes behind us.
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		ap, err := uc.appointments.GetByID(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentStorage.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			// Statement-level serialization failures must reach the
			// transaction manager unwrapped so the attempt is retried.
			if txmanager.IsSerializationFailure(err) {
				return err
			}
			return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
		}
		if ap.ClientID != nil && *ap.ClientID != req.ActorID {
			return ErrForbidden
		}
		if !ap.CanBeRescheduled() {
			return ErrAppointmentNotFound
		}

		duration := time.Duration(ap.ServiceDurationMinutes) * time.Minute
		newEnd := newStart.Add(duration)

		if err := uc.validateTarget(txCtx, ap, newStart, newEnd, req.Date, policy); err != nil {
			return err
		}

		overlapping, err := uc.appointments.ListOverlapping(txCtx, ap.BarberID, newStart, newEnd, ptr.Ptr(ap.ID))
		if err != nil {
			if txmanager.IsSerializationFailure(err) {
				return err
			}
			return fmt.Errorf("%w: failed to list overlapping appointments: %v", ErrInternal, err)
		}
		if len(overlapping) > 0 {
			return ErrSlotConflict
		}

		if err := uc.appointments.UpdateInterval(txCtx, ap.ID, newStart, newEnd); err != nil {
			return err
		}

		previousStart = ap.StartTime
		ap.StartTime = newStart
		ap.EndTime = newEnd
		result = ap
		return nil
	})
	if err != nil {
		return nil, uc.mapTxError(ctx, req, err)
	}

	// 3. Invalidate both the vacated and the newly taken date, after commit.
	// The stored start time carries the driver's location; the cache keys
	// by shop-local date, so normalize before deriving it.
	uc.cache.Invalidate(ctx, result.ShopID, result.BarberID, previousStart.In(req.Date.Location()))
	uc.cache.Invalidate(ctx, result.ShopID, result.BarberID, req.Date)
	uc.dispatcher.Dispatch(events.Event{
		Type:              events.TypeBookingRescheduled,
		AppointmentID:     result.ID,
		ShopID:            result.ShopID,
		BarberID:          result.BarberID,
		StartTime:         result.StartTime,
		EndTime:           result.EndTime,
		PreviousStartTime: ptr.Ptr(previousStart),
		OccurredAt:        now,
	})

	uc.logger.Info("RescheduleAppointment: moved id=%d from %s to %s",
		result.ID, previousStart.Format(time.RFC3339), result.StartTime.Format(time.RFC3339))

	return &Response{Appointment: result}, nil
}

// validateTarget checks business hours and availability windows for the new
// interval.
func (uc *UseCase) validateTarget(ctx context.Context, ap *domain.Appointment, start, end time.Time, date time.Time, policy domain.BookingPolicy) error {
	dayStart, err := policy.BusinessHoursStart.On(date)
	if err != nil {
		return fmt.Errorf("%w: business hours start: %v", ErrInternal, err)
	}
	dayEnd, err := policy.BusinessHoursEnd.On(date)
	if err != nil {
		return fmt.Errorf("%w: business hours end: %v", ErrInternal, err)
	}
	if start.Before(dayStart) || end.After(dayEnd) {
		return fmt.Errorf("%w: booking must be within business hours %s-%s",
			ErrInvalidInput, policy.BusinessHoursStart, policy.BusinessHoursEnd)
	}

	windows, err := uc.schedule.ListWindowsForBarbers(ctx, []int64{ap.BarberID}, date)
	if err != nil {
		if txmanager.IsSerializationFailure(err) {
			return err
		}
		return fmt.Errorf("%w: failed to list availability windows: %v", ErrInternal, err)
	}
	effective := domain.EffectiveWindows(windows, date)
	if len(effective) == 0 {
		return nil
	}
	for i := range effective {
		if effective[i].Contains(date, start, end) {
			return nil
		}
	}
	return ErrSlotConflict
}

// mapTxError translates transaction failures into the use case taxonomy.
func (uc *UseCase) mapTxError(ctx context.Context, req *Request, err error) error {
	switch {
	case errors.Is(err, ErrAppointmentNotFound), errors.Is(err, ErrForbidden), errors.Is(err, ErrInvalidInput):
		uc.logger.Warn("RescheduleAppointment: %v", err)
		return err
	case errors.Is(err, ErrSlotConflict), errors.Is(err, appointmentStorage.ErrSlotTaken):
		uc.logger.Warn("RescheduleAppointment: slot conflict for id=%d at %s %s",
			req.AppointmentID, req.Date.Format(domain.DateFormat), req.StartTime)
		return uc.conflictError(ctx, req)
	case isTimeout(err):
		uc.logger.Warn("RescheduleAppointment: booking timed out: %v", err)
		return fmt.Errorf("%w: %v", ErrBookingTimeout, err)
	case errors.Is(err, ErrInternal):
		uc.logger.Error("RescheduleAppointment: %v", err)
		return err
	default:
		uc.logger.Error("RescheduleAppointment: transaction failed: %v", err)
		return fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
	}
}

// conflictError builds a SlotConflictError with alternatives for the target
// date. The appointment is loaded outside the failed transaction only to
// recover its shop, barber and service for the recomputation.
func (uc *UseCase) conflictError(ctx context.Context, req *Request) error {
	conflictErr := &SlotConflictError{}
	if uc.alternatives == nil {
		return conflictErr
	}

	ap, err := uc.appointments.GetByID(ctx, req.AppointmentID)
	if err != nil {
		return conflictErr
	}

	slots, err := uc.alternatives.AvailableSlots(ctx, ap.ShopID, ptr.Ptr(ap.BarberID), ptr.Ptr(ap.ServiceID), req.Date)
	if err != nil {
		uc.logger.Warn("RescheduleAppointment: failed to compute alternatives: %v", err)
		return conflictErr
	}

	for _, s := range slots {
		if !s.Available {
			continue
		}
		conflictErr.Alternatives = append(conflictErr.Alternatives, create_appointment.AlternativeSlot{
			Time:            s.Time,
			DurationMinutes: s.DurationMinutes,
			IsNextAvailable: s.IsNextAvailable,
		})
	}

	return conflictErr
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, txmanager.ErrRetriesExhausted) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqLockNotAvailable || string(pqErr.Code) == pqQueryCanceled
	}
	return false
}
