package create_appointment

import (
	"context"
	"time"

	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/internal/events"
)

// AppointmentRepository is the write surface of the conflict guard. Inside a
// serializable transaction ListOverlapping locks the rows it returns.
type AppointmentRepository interface {
	Create(ctx context.Context, ap *domain.Appointment) (*domain.Appointment, error)
	ListOverlapping(ctx context.Context, barberID int64, start, end time.Time, excludeID *int64) ([]*domain.Appointment, error)
}

// ScheduleRepository reads the barber and service rows a booking references.
type ScheduleRepository interface {
	GetBarber(ctx context.Context, id int64) (*domain.Barber, error)
	GetService(ctx context.Context, shopID, serviceID int64) (*domain.Service, error)
	BarberOffersService(ctx context.Context, barberID, serviceID int64) (bool, error)
	ListWindowsForBarbers(ctx context.Context, barberIDs []int64, date time.Time) ([]domain.AvailabilityWindow, error)
}

// PolicyProvider supplies the booking policy in force.
type PolicyProvider interface {
	BookingPolicy(ctx context.Context) domain.BookingPolicy
}

// AlternativesProvider recomputes availability so a conflict response can
// carry fresh alternatives instead of the stale grid the caller booked from.
type AlternativesProvider interface {
	AvailableSlots(ctx context.Context, shopID int64, barberID, serviceID *int64, date time.Time) ([]domain.Slot, error)
}

// CacheInvalidator drops cached availability after a committed mutation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, shopID, barberID int64, date time.Time)
}

// EventDispatcher publishes lifecycle events to subscribers.
type EventDispatcher interface {
	Dispatch(ev events.Event)
}

// TransactionManager runs a function inside a serializable transaction,
// retrying on serialization failures.
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

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
