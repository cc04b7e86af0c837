package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/internal/infra/cache/slotcache"
	scheduleStorage "github.com/bookedbarber/booking-service/internal/infra/storage/schedule"
	"github.com/bookedbarber/booking-service/pkg/ptr"
	"github.com/bookedbarber/booking-service/pkg/types"
)

// UseCase computes the bookable slots of one barbershop date. Results are
// served through the slot cache; misses recompute from storage and fill the
// cache with a TTL backstop.
type UseCase struct {
	appointments AppointmentRepository
	schedule     ScheduleRepository
	policy       PolicyProvider
	busy         BusyProvider
	cache        Cache
	cacheTTL     time.Duration
	timeProvider TimeProvider
	logger       Logger
}

func New(
	appointments AppointmentRepository,
	schedule ScheduleRepository,
	policy PolicyProvider,
	busy BusyProvider,
	cache Cache,
	cacheTTL time.Duration,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointments: appointments,
		schedule:     schedule,
		policy:       policy,
		busy:         busy,
		cache:        cache,
		cacheTTL:     cacheTTL,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute returns the evaluated slot grid for the requested date. With
// BarberID set, slots reflect that barber only; without it, a slot is
// available when any active barber of the shop can take it.
func (uc *UseCase) Execute(ctx context.Context, req Request) (*Response, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	policy := uc.policy.BookingPolicy(ctx)

	key := slotcache.Key{
		ShopID:    req.ShopID,
		BarberID:  req.BarberID,
		ServiceID: req.ServiceID,
		Date:      req.Date,
	}

	if entry, ok := uc.cache.Get(ctx, key); ok {
		return uc.buildResponse(req, policy, entry.Slots), nil
	}

	slots, err := uc.compute(ctx, req, policy)
	if err != nil {
		return nil, err
	}

	uc.cache.Put(ctx, key, &domain.SlotCacheEntry{
		Slots:      slots,
		ComputedAt: uc.timeProvider.Now(),
	}, uc.cacheTTL)

	return uc.buildResponse(req, policy, slots), nil
}

// AvailableSlots is the slot view the booking guards use when composing a
// conflict response. Invalidation has already run by then, so Execute
// recomputes from current state.
func (uc *UseCase) AvailableSlots(ctx context.Context, shopID int64, barberID, serviceID *int64, date time.Time) ([]domain.Slot, error) {
	resp, err := uc.Execute(ctx, Request{
		ShopID:    shopID,
		BarberID:  barberID,
		ServiceID: serviceID,
		Date:      date,
	})
	if err != nil {
		return nil, err
	}
	return resp.Slots, nil
}

// compute evaluates the grid from storage, bypassing the cache.
func (uc *UseCase) compute(ctx context.Context, req Request, policy domain.BookingPolicy) ([]domain.Slot, error) {
	grid, err := generateSlotGrid(req.Date, policy)
	if err != nil {
		return nil, err
	}

	barbers, err := uc.resolveBarbers(ctx, req)
	if err != nil {
		return nil, err
	}

	bookingDuration := time.Duration(policy.SlotDurationMinutes) * time.Minute
	if req.ServiceID != nil {
		service, err := uc.schedule.GetService(ctx, req.ShopID, *req.ServiceID)
		if err != nil {
			if errors.Is(err, scheduleStorage.ErrServiceNotFound) {
				return nil, fmt.Errorf("%w: id %d", ErrServiceNotFound, *req.ServiceID)
			}
			return nil, fmt.Errorf("%w: Execute - get service: %v", ErrInternal, err)
		}
		bookingDuration = time.Duration(service.DurationMinutes) * time.Minute
	}

	now := uc.timeProvider.Now()

	// Past dates keep the grid shape but can never be booked.
	if len(barbers) == 0 || isDateInPast(req.Date, now) {
		slots := make([]domain.Slot, 0, len(grid))
		for _, start := range grid {
			slots = append(slots, domain.Slot{
				Time:            types.NewTimeString(start),
				DurationMinutes: int(bookingDuration / time.Minute),
			})
		}
		return slots, nil
	}

	days, err := uc.loadBarberDays(ctx, req, barbers)
	if err != nil {
		return nil, err
	}

	// Already validated by generateSlotGrid.
	dayEnd, _ := policy.BusinessHoursEnd.On(req.Date)

	leadTime := time.Duration(policy.MinLeadTimeMinutes) * time.Minute
	return evaluateSlots(grid, bookingDuration, dayEnd, days, req.Date, now, leadTime), nil
}

// resolveBarbers returns the barbers the evaluation runs against.
func (uc *UseCase) resolveBarbers(ctx context.Context, req Request) ([]domain.Barber, error) {
	if req.BarberID == nil {
		barbers, err := uc.schedule.ListActiveBarbers(ctx, req.ShopID)
		if err != nil {
			return nil, fmt.Errorf("%w: Execute - list active barbers: %v", ErrInternal, err)
		}
		return barbers, nil
	}

	barber, err := uc.schedule.GetBarber(ctx, *req.BarberID)
	if err != nil {
		if errors.Is(err, scheduleStorage.ErrBarberNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrBarberNotFound, *req.BarberID)
		}
		return nil, fmt.Errorf("%w: Execute - get barber: %v", ErrInternal, err)
	}
	if barber.ShopID != req.ShopID || !barber.Active {
		return nil, fmt.Errorf("%w: id %d", ErrBarberNotFound, *req.BarberID)
	}

	return []domain.Barber{*barber}, nil
}

// loadBarberDays gathers per-barber windows, blocking appointments and
// external busy intervals for the date.
func (uc *UseCase) loadBarberDays(ctx context.Context, req Request, barbers []domain.Barber) ([]barberDay, error) {
	barberIDs := make([]int64, 0, len(barbers))
	for _, b := range barbers {
		barberIDs = append(barberIDs, b.ID)
	}

	windows, err := uc.schedule.ListWindowsForBarbers(ctx, barberIDs, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: Execute - list availability windows: %v", ErrInternal, err)
	}

	windowsByBarber := make(map[int64][]domain.AvailabilityWindow, len(barbers))
	for _, w := range windows {
		windowsByBarber[w.BarberID] = append(windowsByBarber[w.BarberID], w)
	}

	dayStart := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, req.Date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	appointments, err := uc.appointments.ListWithFilter(ctx, domain.AppointmentsFilter{
		ShopID:       ptr.Ptr(req.ShopID),
		DayStart:     ptr.Ptr(dayStart),
		DayEnd:       ptr.Ptr(dayEnd),
		BlockingOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: Execute - list appointments: %v", ErrInternal, err)
	}

	appointmentsByBarber := make(map[int64][]*domain.Appointment, len(barbers))
	for _, ap := range appointments {
		appointmentsByBarber[ap.BarberID] = append(appointmentsByBarber[ap.BarberID], ap)
	}

	days := make([]barberDay, 0, len(barbers))
	for _, b := range barbers {
		day := barberDay{
			barber:       b,
			windows:      domain.EffectiveWindows(windowsByBarber[b.ID], req.Date),
			appointments: appointmentsByBarber[b.ID],
		}

		if uc.busy != nil {
			busy, err := uc.busy.GetBusyIntervalsWithGracefulDegradation(ctx, b.ID, req.Date)
			if err != nil {
				uc.logger.Warn("calendar sync unavailable for barber %d: %v", b.ID, err)
			} else {
				day.busy = busy
			}
		}

		days = append(days, day)
	}

	return days, nil
}

func (uc *UseCase) buildResponse(req Request, policy domain.BookingPolicy, slots []domain.Slot) *Response {
	resp := &Response{
		Date:      req.Date,
		ShopID:    req.ShopID,
		BarberID:  req.BarberID,
		ServiceID: req.ServiceID,
		BusinessHours: BusinessHours{
			Start: policy.BusinessHoursStart,
			End:   policy.BusinessHoursEnd,
		},
		Slots: slots,
	}

	for i := range slots {
		if slots[i].IsNextAvailable {
			t := slots[i].Time
			resp.NextAvailable = &t
			break
		}
	}

	return resp
}
