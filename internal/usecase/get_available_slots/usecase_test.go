package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/internal/infra/cache/slotcache"
	scheduleStorage "github.com/bookedbarber/booking-service/internal/infra/storage/schedule"
	"github.com/bookedbarber/booking-service/pkg/ptr"
)

type fakeAppointments struct {
	appointments []*domain.Appointment
	calls        int
}

func (f *fakeAppointments) ListWithFilter(_ context.Context, _ domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	f.calls++
	return f.appointments, nil
}

type fakeSchedule struct {
	barbers  map[int64]*domain.Barber
	services map[int64]*domain.Service
	windows  []domain.AvailabilityWindow
}

func (f *fakeSchedule) GetBarber(_ context.Context, id int64) (*domain.Barber, error) {
	b, ok := f.barbers[id]
	if !ok {
		return nil, scheduleStorage.ErrBarberNotFound
	}
	return b, nil
}

func (f *fakeSchedule) ListActiveBarbers(_ context.Context, shopID int64) ([]domain.Barber, error) {
	out := make([]domain.Barber, 0)
	for _, b := range f.barbers {
		if b.ShopID == shopID && b.Active {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeSchedule) GetService(_ context.Context, _, serviceID int64) (*domain.Service, error) {
	s, ok := f.services[serviceID]
	if !ok {
		return nil, scheduleStorage.ErrServiceNotFound
	}
	return s, nil
}

func (f *fakeSchedule) ListWindowsForBarbers(_ context.Context, _ []int64, _ time.Time) ([]domain.AvailabilityWindow, error) {
	return f.windows, nil
}

type fakePolicy struct{ policy domain.BookingPolicy }

func (f *fakePolicy) BookingPolicy(_ context.Context) domain.BookingPolicy { return f.policy }

type fakeTime struct{ now time.Time }

func (f *fakeTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestUseCase(appointments *fakeAppointments, schedule *fakeSchedule, cache Cache) *UseCase {
	return New(
		appointments,
		schedule,
		&fakePolicy{policy: testPolicy()},
		nil,
		cache,
		5*time.Minute,
		&fakeTime{now: time.Date(2026, 9, 9, 12, 0, 0, 0, time.UTC)},
		nopLogger{},
	)
}

func singleBarberSchedule() *fakeSchedule {
	return &fakeSchedule{
		barbers: map[int64]*domain.Barber{
			1: {ID: 1, ShopID: 7, Name: "Alex", Active: true},
		},
		services: map[int64]*domain.Service{
			3: {ID: 3, ShopID: 7, Name: "Fade", DurationMinutes: 60, Active: true},
		},
	}
}

func TestExecute_ComputesAndFillsCache(t *testing.T) {
	appointments := &fakeAppointments{}
	cache := slotcache.NewMemoryCache(slotcache.NopRecorder{})
	uc := newTestUseCase(appointments, singleBarberSchedule(), cache)

	resp, err := uc.Execute(context.Background(), Request{ShopID: 7, BarberID: ptr.Ptr(int64(1)), Date: testDate()})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 16)
	assert.Equal(t, 1, appointments.calls)
	assert.Equal(t, 1, cache.Len())

	// A second read is served from the cache without touching storage.
	resp2, err := uc.Execute(context.Background(), Request{ShopID: 7, BarberID: ptr.Ptr(int64(1)), Date: testDate()})
	require.NoError(t, err)
	assert.Equal(t, resp.Slots, resp2.Slots)
	assert.Equal(t, 1, appointments.calls)
}

func TestExecute_ServiceDurationDrivesSlotLength(t *testing.T) {
	appointments := &fakeAppointments{}
	uc := newTestUseCase(appointments, singleBarberSchedule(), slotcache.NewNoopCache())

	resp, err := uc.Execute(context.Background(), Request{
		ShopID:    7,
		BarberID:  ptr.Ptr(int64(1)),
		ServiceID: ptr.Ptr(int64(3)),
		Date:      testDate(),
	})
	require.NoError(t, err)

	for _, s := range resp.Slots {
		assert.Equal(t, 60, s.DurationMinutes)
	}

	// A 60-minute service cannot start at 16:30 and still end by 17:00.
	last := resp.Slots[len(resp.Slots)-1]
	assert.Equal(t, "16:30", last.Time.String())
	assert.False(t, last.Available)
}

func TestExecute_BarberNotFound(t *testing.T) {
	uc := newTestUseCase(&fakeAppointments{}, singleBarberSchedule(), slotcache.NewNoopCache())

	_, err := uc.Execute(context.Background(), Request{ShopID: 7, BarberID: ptr.Ptr(int64(99)), Date: testDate()})
	assert.ErrorIs(t, err, ErrBarberNotFound)

	// A barber from another shop is not visible either.
	schedule := singleBarberSchedule()
	schedule.barbers[1].ShopID = 8
	uc = newTestUseCase(&fakeAppointments{}, schedule, slotcache.NewNoopCache())

	_, err = uc.Execute(context.Background(), Request{ShopID: 7, BarberID: ptr.Ptr(int64(1)), Date: testDate()})
	assert.ErrorIs(t, err, ErrBarberNotFound)
}

func TestExecute_ServiceNotFound(t *testing.T) {
	uc := newTestUseCase(&fakeAppointments{}, singleBarberSchedule(), slotcache.NewNoopCache())

	_, err := uc.Execute(context.Background(), Request{
		ShopID:    7,
		ServiceID: ptr.Ptr(int64(42)),
		Date:      testDate(),
	})
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestExecute_NoActiveBarbersYieldsEmptyGrid(t *testing.T) {
	schedule := singleBarberSchedule()
	schedule.barbers[1].Active = false
	uc := newTestUseCase(&fakeAppointments{}, schedule, slotcache.NewNoopCache())

	resp, err := uc.Execute(context.Background(), Request{ShopID: 7, Date: testDate()})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 16)
	for _, s := range resp.Slots {
		assert.False(t, s.Available)
	}
	assert.Nil(t, resp.NextAvailable)
}

func TestExecute_PastDateIsNeverBookable(t *testing.T) {
	uc := newTestUseCase(&fakeAppointments{}, singleBarberSchedule(), slotcache.NewNoopCache())

	past := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	resp, err := uc.Execute(context.Background(), Request{ShopID: 7, Date: past})
	require.NoError(t, err)
	for _, s := range resp.Slots {
		assert.False(t, s.Available)
	}
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := newTestUseCase(&fakeAppointments{}, singleBarberSchedule(), slotcache.NewNoopCache())

	_, err := uc.Execute(context.Background(), Request{ShopID: 0, Date: testDate()})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), Request{ShopID: 7})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
