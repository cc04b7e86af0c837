package appointments

import (
	"context"
	"time"

	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/internal/events"
)

// AppointmentRepository is the persistence surface of the lifecycle manager.
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	ListWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
	Cancel(ctx context.Context, id int64, reason string) error
}

// CacheInvalidator drops cached availability after a committed mutation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, shopID, barberID int64, date time.Time)
}

// EventDispatcher publishes lifecycle events to subscribers.
type EventDispatcher interface {
	Dispatch(ev events.Event)
}

// TransactionManager runs a function inside a transaction. Lifecycle
// transitions use a plain read-write transaction: the row lock taken by
// GetByID is enough, no interval is being claimed.
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider returns the current time; a fake is injected in tests.
type TimeProvider interface {
	Now() time.Time
}

// Logger is the logging surface of the service.
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
