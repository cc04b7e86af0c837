package create_appointment

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/internal/events"
	appointmentStorage "github.com/bookedbarber/booking-service/internal/infra/storage/appointment"
	scheduleStorage "github.com/bookedbarber/booking-service/internal/infra/storage/schedule"
	"github.com/bookedbarber/booking-service/pkg/txmanager"
)

// memAppointments is an in-memory AppointmentRepository guarded by the fake
// transaction manager's lock, mirroring how the real repository relies on the
// serializable transaction for isolation.
type memAppointments struct {
	mu     sync.Mutex
	nextID int64
	rows   []*domain.Appointment
}

func (m *memAppointments) Create(_ context.Context, ap *domain.Appointment) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	ap.ID = m.nextID
	cp := *ap
	m.rows = append(m.rows, &cp)
	return ap, nil
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

type fakeSchedule struct {
	barber  *domain.Barber
	service *domain.Service
	offers  bool
	windows []domain.AvailabilityWindow
}

func (f *fakeSchedule) GetBarber(_ context.Context, id int64) (*domain.Barber, error) {
	if f.barber == nil || f.barber.ID != id {
		return nil, scheduleStorage.ErrBarberNotFound
	}
	return f.barber, nil
}

func (f *fakeSchedule) GetService(_ context.Context, _, serviceID int64) (*domain.Service, error) {
	if f.service == nil || f.service.ID != serviceID {
		return nil, scheduleStorage.ErrServiceNotFound
	}
	return f.service, nil
}

func (f *fakeSchedule) BarberOffersService(_ context.Context, _, _ int64) (bool, error) {
	return f.offers, nil
}

func (f *fakeSchedule) ListWindowsForBarbers(_ context.Context, _ []int64, _ time.Time) ([]domain.AvailabilityWindow, error) {
	return f.windows, nil
}

type fakePolicy struct{ policy domain.BookingPolicy }

func (f *fakePolicy) BookingPolicy(_ context.Context) domain.BookingPolicy { return f.policy }

// lockingTxManager serializes transactions with a mutex, standing in for the
// SERIALIZABLE isolation the real manager provides.
type lockingTxManager struct{ mu sync.Mutex }

func (m *lockingTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type recordingCache struct {
	mu            sync.Mutex
	invalidations []string
}

func (c *recordingCache) Invalidate(_ context.Context, shopID, barberID int64, date time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations = append(c.invalidations, date.Format(domain.DateFormat))
}

func (c *recordingCache) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.invalidations)
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

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}

type staticAlternatives struct{ slots []domain.Slot }

func (s *staticAlternatives) AvailableSlots(_ context.Context, _ int64, _, _ *int64, _ time.Time) ([]domain.Slot, error) {
	return s.slots, nil
}

type fakeTime struct{ now time.Time }

func (f *fakeTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testPolicy() domain.BookingPolicy {
	return domain.BookingPolicy{
		BusinessHoursStart:  "09:00",
		BusinessHoursEnd:    "17:00",
		SlotDurationMinutes: 30,
		MinLeadTimeMinutes:  60,
	}
}

type fixture struct {
	uc         *UseCase
	repo       *memAppointments
	cache      *recordingCache
	dispatcher *recordingDispatcher
}

func newFixture() *fixture {
	repo := &memAppointments{}
	cache := &recordingCache{}
	dispatcher := &recordingDispatcher{}
	schedule := &fakeSchedule{
		barber:  &domain.Barber{ID: 1, ShopID: 7, Name: "Alex", Active: true},
		service: &domain.Service{ID: 3, ShopID: 7, Name: "Fade", DurationMinutes: 30, Active: true},
		offers:  true,
	}

	uc := NewUseCase(
		repo,
		schedule,
		&fakePolicy{policy: testPolicy()},
		&staticAlternatives{slots: []domain.Slot{
			{Time: "11:00", DurationMinutes: 30, Available: true, IsNextAvailable: true},
			{Time: "11:30", DurationMinutes: 30},
		}},
		cache,
		dispatcher,
		&lockingTxManager{},
		nopLogger{},
	)
	uc.timeProvider = &fakeTime{now: time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)}

	return &fixture{uc: uc, repo: repo, cache: cache, dispatcher: dispatcher}
}

func validRequest() *Request {
	return &Request{
		ShopID:     7,
		BarberID:   1,
		ServiceID:  3,
		ClientName: "Sam",
		Date:       time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		StartTime:  "10:00",
	}
}

func TestExecute_BooksFreeSlot(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	ap := resp.Appointment
	assert.Equal(t, int64(1), ap.ID)
	assert.Equal(t, domain.StatusPending, ap.Status)
	assert.Equal(t, time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC), ap.StartTime)
	assert.Equal(t, time.Date(2026, 9, 10, 10, 30, 0, 0, time.UTC), ap.EndTime)
	assert.Equal(t, "Fade", ap.ServiceName)

	assert.Equal(t, 1, f.cache.count())
	require.Equal(t, 1, f.dispatcher.count())
	assert.Equal(t, events.TypeBookingCreated, f.dispatcher.events[0].Type)
}

func TestExecute_SecondBookingConflictsWithAlternatives(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrSlotConflict)

	var conflict *SlotConflictError
	require.ErrorAs(t, err, &conflict)
	require.Len(t, conflict.Alternatives, 1)
	assert.Equal(t, "11:00", conflict.Alternatives[0].Time.String())

	// The loser neither invalidates the cache nor emits an event.
	assert.Equal(t, 1, f.cache.count())
	assert.Equal(t, 1, f.dispatcher.count())
}

func TestExecute_OverlappingIntervalConflicts(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// 10:15 overlaps the 10:00-10:30 booking even though the start differs.
	req := validRequest()
	req.StartTime = "10:15"
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotConflict)

	// 10:30 touches the boundary and is fine.
	req = validRequest()
	req.StartTime = "10:30"
	_, err = f.uc.Execute(context.Background(), req)
	assert.NoError(t, err)
}

func TestExecute_ConcurrentRequestsProduceOneWinner(t *testing.T) {
	f := newFixture()

	const attempts = 16
	results := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Execute(context.Background(), validRequest())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		default:
			require.ErrorIs(t, err, ErrSlotConflict)
			conflicts++
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, conflicts)
	assert.Equal(t, 1, f.cache.count())
	assert.Equal(t, 1, f.dispatcher.count())

	f.repo.mu.Lock()
	defer f.repo.mu.Unlock()
	assert.Len(t, f.repo.rows, 1)
}

func TestExecute_LeadTimeRejected(t *testing.T) {
	f := newFixture()

	// now is 08:00 with a 60-minute lead time; 08:30 is too soon.
	req := validRequest()
	req.StartTime = "08:30"
	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_OutsideBusinessHoursRejected(t *testing.T) {
	f := newFixture()

	req := validRequest()
	req.StartTime = "16:45" // would end 17:15
	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_UnknownBarberAndService(t *testing.T) {
	f := newFixture()

	req := validRequest()
	req.BarberID = 99
	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrBarberNotFound)

	req = validRequest()
	req.ServiceID = 99
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestExecute_ValidationErrors(t *testing.T) {
	f := newFixture()

	req := validRequest()
	req.ClientName = ""
	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validRequest()
	req.StartTime = "ten"
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// flakyAppointments fails the first ListOverlapping with a repository-wrapped
// serialization failure, the way a concurrent writer aborts a SERIALIZABLE
// read mid-statement.
type flakyAppointments struct {
	memAppointments
	failures int
}

func (m *flakyAppointments) ListOverlapping(ctx context.Context, barberID int64, start, end time.Time, excludeID *int64) ([]*domain.Appointment, error) {
	if m.failures > 0 {
		m.failures--
		return nil, fmt.Errorf("%w: ListOverlapping - execute query: %w",
			appointmentStorage.ErrExecQuery, &pq.Error{Code: "40001"})
	}
	return m.memAppointments.ListOverlapping(ctx, barberID, start, end, excludeID)
}

// retryingTxManager retries the same way the real manager does: only when the
// returned error still carries the serialization SQLSTATE.
type retryingTxManager struct{ attempts int }

func (m *retryingTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for i := 0; i < 3; i++ {
		m.attempts++
		err = fn(ctx)
		if err == nil || !txmanager.IsSerializationFailure(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", txmanager.ErrRetriesExhausted, err)
}

func TestExecute_StatementSerializationFailureIsRetried(t *testing.T) {
	f := newFixture()
	repo := &flakyAppointments{failures: 1}
	txMgr := &retryingTxManager{}
	f.uc.appointments = repo
	f.uc.txManager = txMgr

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, txMgr.attempts)
	assert.Equal(t, int64(1), resp.Appointment.ID)
	assert.Equal(t, 1, f.cache.count())
}

func TestExecute_ExhaustedRetriesReportTimeout(t *testing.T) {
	f := newFixture()
	f.uc.appointments = &flakyAppointments{failures: 3}
	f.uc.txManager = &retryingTxManager{}

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrBookingTimeout)
}
