package reschedule_appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/internal/events"
	appointmentStorage "github.com/bookedbarber/booking-service/internal/infra/storage/appointment"
	"github.com/bookedbarber/booking-service/pkg/ptr"
)

type memAppointments struct {
	mu   sync.Mutex
	rows map[int64]*domain.Appointment
}

func (m *memAppointments) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ap, ok := m.rows[id]
	if !ok {
		return nil, appointmentStorage.ErrAppointmentNotFound
	}
	cp := *ap
	return &cp, nil
}

func (m *memAppointments) ListOverlapping(_ context.Context, barberID int64, start, end time.Time, excludeID *int64) ([]*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Appointment, 0)
	for _, ap := range m.rows {
		if ap.BarberID != barberID || !ap.IsBlocking() {
			continue
		}
		if excludeID != nil && ap.ID == *excludeID {
			continue
		}
		if ap.Overlaps(start, end) {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (m *memAppointments) UpdateInterval(_ context.Context, id int64, start, end time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ap, ok := m.rows[id]
	if !ok {
		return appointmentStorage.ErrAppointmentNotFound
	}
	ap.StartTime = start
	ap.EndTime = end
	return nil
}

type fakeSchedule struct{ windows []domain.AvailabilityWindow }

func (f *fakeSchedule) ListWindowsForBarbers(_ context.Context, _ []int64, _ time.Time) ([]domain.AvailabilityWindow, error) {
	return f.windows, nil
}

type fakePolicy struct{ policy domain.BookingPolicy }

func (f *fakePolicy) BookingPolicy(_ context.Context) domain.BookingPolicy { return f.policy }

type lockingTxManager struct{ mu sync.Mutex }

func (m *lockingTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type recordingCache struct {
	mu    sync.Mutex
	dates []string
}

func (c *recordingCache) Invalidate(_ context.Context, _, _ int64, date time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dates = append(c.dates, date.Format(domain.DateFormat))
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Dispatch(ev events.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
}

type fakeTime struct{ now time.Time }

func (f *fakeTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func day(d int) time.Time {
	return time.Date(2026, 9, d, 0, 0, 0, 0, time.UTC)
}

// actorSam owns every appointment created by appointmentAt.
const actorSam int64 = 500

func appointmentAt(id int64, d, h, m int, status domain.AppointmentStatus) *domain.Appointment {
	start := time.Date(2026, 9, d, h, m, 0, 0, time.UTC)
	clientID := actorSam
	return &domain.Appointment{
		ID:                     id,
		ShopID:                 7,
		BarberID:               1,
		ServiceID:              3,
		ClientID:               &clientID,
		ClientName:             "Sam",
		StartTime:              start,
		EndTime:                start.Add(30 * time.Minute),
		Status:                 status,
		ServiceDurationMinutes: 30,
	}
}

type fixture struct {
	uc         *UseCase
	repo       *memAppointments
	cache      *recordingCache
	dispatcher *recordingDispatcher
}

func newFixture(rows ...*domain.Appointment) *fixture {
	repo := &memAppointments{rows: make(map[int64]*domain.Appointment)}
	for _, ap := range rows {
		repo.rows[ap.ID] = ap
	}
	cache := &recordingCache{}
	dispatcher := &recordingDispatcher{}

	uc := NewUseCase(
		repo,
		&fakeSchedule{},
		&fakePolicy{policy: domain.BookingPolicy{
			BusinessHoursStart:  "09:00",
			BusinessHoursEnd:    "17:00",
			SlotDurationMinutes: 30,
			MinLeadTimeMinutes:  60,
		}},
		nil,
		cache,
		dispatcher,
		&lockingTxManager{},
		nopLogger{},
	)
	uc.timeProvider = &fakeTime{now: time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)}

	return &fixture{uc: uc, repo: repo, cache: cache, dispatcher: dispatcher}
}

func TestExecute_MovesAppointmentAtomically(t *testing.T) {
	f := newFixture(appointmentAt(1, 10, 10, 0, domain.StatusConfirmed))

	resp, err := f.uc.Execute(context.Background(), &Request{
		AppointmentID: 1,
		ActorID:       actorSam,
		Date:          day(11),
		StartTime:     "14:00",
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 9, 11, 14, 0, 0, 0, time.UTC), resp.Appointment.StartTime)
	assert.Equal(t, time.Date(2026, 9, 11, 14, 30, 0, 0, time.UTC), resp.Appointment.EndTime)

	stored, err := f.repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, resp.Appointment.StartTime, stored.StartTime)

	// Both the vacated and the newly taken date are invalidated.
	assert.ElementsMatch(t, []string{"2026-09-10", "2026-09-11"}, f.cache.dates)

	require.Len(t, f.dispatcher.events, 1)
	ev := f.dispatcher.events[0]
	assert.Equal(t, events.TypeBookingRescheduled, ev.Type)
	require.NotNil(t, ev.PreviousStartTime)
	assert.Equal(t, time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC), *ev.PreviousStartTime)
}

func TestExecute_ConflictLeavesOriginalUntouched(t *testing.T) {
	f := newFixture(
		appointmentAt(1, 10, 10, 0, domain.StatusConfirmed),
		appointmentAt(2, 11, 14, 0, domain.StatusPending),
	)

	_, err := f.uc.Execute(context.Background(), &Request{
		AppointmentID: 1,
		ActorID:       actorSam,
		Date:          day(11),
		StartTime:     "14:00",
	})
	require.ErrorIs(t, err, ErrSlotConflict)

	stored, getErr := f.repo.GetByID(context.Background(), 1)
	require.NoError(t, getErr)
	assert.Equal(t, time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC), stored.StartTime)

	assert.Empty(t, f.cache.dates)
	assert.Empty(t, f.dispatcher.events)
}

func TestExecute_MoveWithinSameDayPastOwnInterval(t *testing.T) {
	// An appointment may move onto an interval adjacent to the one it
	// currently holds; its own row is excluded from the overlap check.
	f := newFixture(appointmentAt(1, 10, 10, 0, domain.StatusConfirmed))

	resp, err := f.uc.Execute(context.Background(), &Request{
		AppointmentID: 1,
		ActorID:       actorSam,
		Date:          day(10),
		StartTime:     "10:15",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 10, 10, 15, 0, 0, time.UTC), resp.Appointment.StartTime)
}

func TestExecute_TerminalAppointmentReportsNotFound(t *testing.T) {
	f := newFixture(appointmentAt(1, 10, 10, 0, domain.StatusCancelled))

	_, err := f.uc.Execute(context.Background(), &Request{
		AppointmentID: 1,
		ActorID:       actorSam,
		Date:          day(11),
		StartTime:     "14:00",
	})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestExecute_VacatedDateUsesShopZone(t *testing.T) {
	// Stored in UTC the old start sits on the 10th; in the shop's zone it
	// is already the 11th, and the vacated cache date must match the zone.
	shopZone := time.FixedZone("UTC+3", 3*60*60)
	ap := appointmentAt(1, 10, 22, 30, domain.StatusConfirmed)
	f := newFixture(ap)

	_, err := f.uc.Execute(context.Background(), &Request{
		AppointmentID: 1,
		ActorID:       actorSam,
		Date:          time.Date(2026, 9, 12, 0, 0, 0, 0, shopZone),
		StartTime:     "14:00",
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"2026-09-11", "2026-09-12"}, f.cache.dates)
}

func TestExecute_OtherClientsAppointmentIsForbidden(t *testing.T) {
	f := newFixture(appointmentAt(1, 10, 10, 0, domain.StatusConfirmed))

	_, err := f.uc.Execute(context.Background(), &Request{
		AppointmentID: 1,
		ActorID:       actorSam + 1,
		Date:          day(11),
		StartTime:     "14:00",
	})
	require.ErrorIs(t, err, ErrForbidden)

	stored, getErr := f.repo.GetByID(context.Background(), 1)
	require.NoError(t, getErr)
	assert.Equal(t, time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC), stored.StartTime)
	assert.Empty(t, f.cache.dates)
}

func TestExecute_MissingAppointment(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Execute(context.Background(), &Request{
		AppointmentID: 42,
		ActorID:       actorSam,
		Date:          day(11),
		StartTime:     "14:00",
	})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestExecute_LeadTimeRejected(t *testing.T) {
	f := newFixture(appointmentAt(1, 10, 10, 0, domain.StatusConfirmed))

	_, err := f.uc.Execute(context.Background(), &Request{
		AppointmentID: 1,
		ActorID:       actorSam,
		Date:          day(10),
		StartTime:     "08:30",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_WindowMismatchConflicts(t *testing.T) {
	f := newFixture(appointmentAt(1, 10, 10, 0, domain.StatusConfirmed))
	f.uc.schedule = &fakeSchedule{windows: []domain.AvailabilityWindow{
		{BarberID: 1, Weekday: ptr.Ptr(int(day(11).Weekday())), StartTime: "09:00", EndTime: "12:00", Active: true},
	}}

	_, err := f.uc.Execute(context.Background(), &Request{
		AppointmentID: 1,
		ActorID:       actorSam,
		Date:          day(11),
		StartTime:     "14:00",
	})
	assert.ErrorIs(t, err, ErrSlotConflict)
}
