package get_available_slots

import (
	"context"
	"time"

	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/internal/infra/cache/slotcache"
	"github.com/bookedbarber/booking-service/internal/integrations/calendarsync"
)

// AppointmentRepository is the persistence surface the evaluator reads.
type AppointmentRepository interface {
	ListWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
}

// ScheduleRepository reads barbers, services and availability windows.
type ScheduleRepository interface {
	GetBarber(ctx context.Context, id int64) (*domain.Barber, error)
	ListActiveBarbers(ctx context.Context, shopID int64) ([]domain.Barber, error)
	GetService(ctx context.Context, shopID, serviceID int64) (*domain.Service, error)
	ListWindowsForBarbers(ctx context.Context, barberIDs []int64, date time.Time) ([]domain.AvailabilityWindow, error)
}

// PolicyProvider supplies the externally owned booking policy. It is read at
// the start of every computation so config changes apply without restart.
type PolicyProvider interface {
	BookingPolicy(ctx context.Context) domain.BookingPolicy
}

// BusyProvider supplies externally blocked intervals from the calendar-sync
// collaborator. May be nil when the collaborator is disabled.
type BusyProvider interface {
	GetBusyIntervalsWithGracefulDegradation(ctx context.Context, barberID int64, date time.Time) ([]calendarsync.BusyInterval, error)
}

// Cache is the coherence layer in front of the computation.
type Cache = slotcache.Cache

// TimeProvider returns the current time; a fake is injected in tests.
type TimeProvider interface {
	Now() time.Time
}

// Logger is the logging surface of the use case.
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider is the production TimeProvider.
type RealTimeProvider struct{}

// Now returns the current time.
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
