package create_appointment

import (
	"fmt"
	"time"

	"github.com/bookedbarber/booking-service/internal/domain"
)

// validateRequest checks the request shape before any storage access.
func validateRequest(req *Request) error {
	if req.ShopID <= 0 {
		return fmt.Errorf("%w: shopID must be positive", ErrInvalidInput)
	}
	if req.BarberID <= 0 {
		return fmt.Errorf("%w: barberID must be positive", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}
	if req.ClientID != nil && *req.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}
	if req.ClientName == "" {
		return fmt.Errorf("%w: client name is required", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: start time: %v", ErrInvalidInput, err)
	}
	return nil
}

// validateLeadTime rejects bookings that start in the past or closer to now
// than the configured minimum lead time.
func validateLeadTime(start, now time.Time, leadTime time.Duration) error {
	if start.Before(now.Add(leadTime)) {
		return fmt.Errorf("%w: booking must start at least %d minutes from now",
			ErrInvalidInput, int(leadTime/time.Minute))
	}
	return nil
}

// validateBusinessHours rejects intervals that are not fully inside the
// shop's business hours for the date.
func validateBusinessHours(date time.Time, start, end time.Time, policy domain.BookingPolicy) error {
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
	return nil
}

// windowAllows reports whether the barber's availability windows admit the
// interval. A barber with no windows for the date works the whole business
// day.
func windowAllows(windows []domain.AvailabilityWindow, date, start, end time.Time) bool {
	effective := domain.EffectiveWindows(windows, date)
	if len(effective) == 0 {
		return true
	}
	for i := range effective {
		if effective[i].Contains(date, start, end) {
			return true
		}
	}
	return false
}
