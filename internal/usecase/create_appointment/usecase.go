package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/internal/events"
	appointmentStorage "github.com/bookedbarber/booking-service/internal/infra/storage/appointment"
	scheduleStorage "github.com/bookedbarber/booking-service/internal/infra/storage/schedule"
	"github.com/bookedbarber/booking-service/pkg/ptr"
	"github.com/bookedbarber/booking-service/pkg/txmanager"
)

// Postgres error codes the guard maps to a retryable timeout.
const (
	pqLockNotAvailable = "55P03"
	pqQueryCanceled    = "57014"
)

// UseCase is the booking conflict guard: it admits a new appointment only if
// no blocking appointment overlaps it, deciding under a serializable
// transaction so concurrent requests for the same slot produce exactly one
// winner.
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

// Execute books the requested slot or reports why it cannot be booked. On a
// conflict the returned error carries freshly computed alternatives for the
// same date.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: shop=%d, barber=%d, service=%d, date=%s, time=%s",
		req.ShopID, req.BarberID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Validate request shape.
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	policy := uc.policy.BookingPolicy(ctx)

	// 2. Resolve the barber and check shop membership.
	barber, err := uc.schedule.GetBarber(ctx, req.BarberID)
	if err != nil {
		if errors.Is(err, scheduleStorage.ErrBarberNotFound) {
			uc.logger.Warn("CreateAppointment: barber id=%d not found", req.BarberID)
			return nil, ErrBarberNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get barber id=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: failed to get barber: %v", ErrInternal, err)
	}
	if barber.ShopID != req.ShopID || !barber.Active {
		uc.logger.Warn("CreateAppointment: barber id=%d not active in shop id=%d", req.BarberID, req.ShopID)
		return nil, ErrBarberNotFound
	}

	// 3. Resolve the service and check the barber offers it.
	service, err := uc.schedule.GetService(ctx, req.ShopID, req.ServiceID)
	if err != nil {
		if errors.Is(err, scheduleStorage.ErrServiceNotFound) {
			uc.logger.Warn("CreateAppointment: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	offers, err := uc.schedule.BarberOffersService(ctx, req.BarberID, req.ServiceID)
	if err != nil {
		uc.logger.Error("CreateAppointment: failed to check barber services: %v", err)
		return nil, fmt.Errorf("%w: failed to check barber services: %v", ErrInternal, err)
	}
	if !offers {
		uc.logger.Warn("CreateAppointment: barber id=%d does not offer service id=%d", req.BarberID, req.ServiceID)
		return nil, ErrServiceNotFound
	}

	// 4. Anchor the interval on the date; the end comes from the service
	// duration, not the grid step.
	start, err := req.StartTime.On(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: start time: %v", ErrInvalidInput, err)
	}
	end := start.Add(time.Duration(service.DurationMinutes) * time.Minute)

	// 5. Policy checks: lead time and business hours.
	leadTime := time.Duration(policy.MinLeadTimeMinutes) * time.Minute
	if err := validateLeadTime(start, now, leadTime); err != nil {
		uc.logger.Warn("CreateAppointment: lead time check failed: %v", err)
		return nil, err
	}
	if err := validateBusinessHours(req.Date, start, end, policy); err != nil {
		uc.logger.Warn("CreateAppointment: business hours check failed: %v", err)
		return nil, err
	}

	// 6. Availability windows: reject intervals the barber never works.
	windows, err := uc.schedule.ListWindowsForBarbers(ctx, []int64{req.BarberID}, req.Date)
	if err != nil {
		uc.logger.Error("CreateAppointment: failed to list availability windows: %v", err)
		return nil, fmt.Errorf("%w: failed to list availability windows: %v", ErrInternal, err)
	}
	if !windowAllows(windows, req.Date, start, end) {
		uc.logger.Warn("CreateAppointment: interval outside barber id=%d working windows", req.BarberID)
		return nil, uc.conflictError(ctx, req)
	}

	var result *domain.Appointment

	// 7. Decide inside a serializable transaction. ListOverlapping locks the
	// rows it reads, so two concurrent attempts on the same slot serialize;
	// the partial unique index on (barber_id, start_time) backstops exact
	// duplicates.
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		overlapping, err := uc.appointments.ListOverlapping(txCtx, req.BarberID, start, end, nil)
		if err != nil {
			// Statement-level serialization failures must reach the
			// transaction manager unwrapped so the attempt is retried.
			if txmanager.IsSerializationFailure(err) {
				return err
			}
			return fmt.Errorf("%w: failed to list overlapping appointments: %v", ErrInternal, err)
		}
		if len(overlapping) > 0 {
			return ErrSlotConflict
		}

		var notes *string
		if req.Notes != "" {
			notes = ptr.Ptr(req.Notes)
		}

		created, err := uc.appointments.Create(txCtx, &domain.Appointment{
			ShopID:                 req.ShopID,
			BarberID:               req.BarberID,
			ServiceID:              req.ServiceID,
			ClientID:               req.ClientID,
			ClientName:             req.ClientName,
			ClientPhone:            req.ClientPhone,
			StartTime:              start,
			EndTime:                end,
			Status:                 domain.StatusPending,
			ServiceName:            service.Name,
			ServiceDurationMinutes: service.DurationMinutes,
			ServicePrice:           service.Price,
			Notes:                  notes,
		})
		if err != nil {
			return err
		}

		result = created
		return nil
	})
	if err != nil {
		return nil, uc.mapTxError(ctx, req, err)
	}

	// 8. Invalidate cached availability and publish only after commit, so no
	// reader can observe a fresh cache entry for a state that rolled back.
	uc.cache.Invalidate(ctx, req.ShopID, req.BarberID, req.Date)
	uc.dispatcher.Dispatch(events.Event{
		Type:          events.TypeBookingCreated,
		AppointmentID: result.ID,
		ShopID:        result.ShopID,
		BarberID:      result.BarberID,
		StartTime:     result.StartTime,
		EndTime:       result.EndTime,
		OccurredAt:    now,
	})

	uc.logger.Info("CreateAppointment: created id=%d for barber=%d at %s",
		result.ID, result.BarberID, result.StartTime.Format(time.RFC3339))

	return &Response{Appointment: result}, nil
}

// mapTxError translates transaction failures into the use case taxonomy.
func (uc *UseCase) mapTxError(ctx context.Context, req *Request, err error) error {
	switch {
	case errors.Is(err, ErrSlotConflict), errors.Is(err, appointmentStorage.ErrSlotTaken):
		uc.logger.Warn("CreateAppointment: slot conflict for barber=%d at %s %s",
			req.BarberID, req.Date.Format(domain.DateFormat), req.StartTime)
		return uc.conflictError(ctx, req)
	case isTimeout(err):
		uc.logger.Warn("CreateAppointment: booking timed out: %v", err)
		return fmt.Errorf("%w: %v", ErrBookingTimeout, err)
	case errors.Is(err, ErrInternal):
		uc.logger.Error("CreateAppointment: %v", err)
		return err
	default:
		uc.logger.Error("CreateAppointment: transaction failed: %v", err)
		return fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
	}
}

// conflictError builds a SlotConflictError with alternatives recomputed from
// current state, so the caller never has to retry against a stale grid.
func (uc *UseCase) conflictError(ctx context.Context, req *Request) error {
	conflictErr := &SlotConflictError{}
	if uc.alternatives == nil {
		return conflictErr
	}

	slots, err := uc.alternatives.AvailableSlots(ctx, req.ShopID, &req.BarberID, &req.ServiceID, req.Date)
	if err != nil {
		uc.logger.Warn("CreateAppointment: failed to compute alternatives: %v", err)
		return conflictErr
	}

	for _, s := range slots {
		if !s.Available {
			continue
		}
		conflictErr.Alternatives = append(conflictErr.Alternatives, AlternativeSlot{
			Time:            s.Time,
			DurationMinutes: s.DurationMinutes,
			IsNextAvailable: s.IsNextAvailable,
		})
	}

	return conflictErr
}

// isTimeout reports whether the error is a deadline or lock acquisition
// failure the caller may safely retry.
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
