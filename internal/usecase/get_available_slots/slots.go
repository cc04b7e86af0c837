package get_available_slots

import (
	"fmt"
	"time"

	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/internal/integrations/calendarsync"
	"github.com/bookedbarber/booking-service/pkg/types"
)

// generateSlotGrid produces the ordered candidate slot starts for a date:
// business hours stepped by the slot duration. A trailing partial slot is
// dropped so no slot ends after business hours. Pure and deterministic.
func generateSlotGrid(date time.Time, policy domain.BookingPolicy) ([]time.Time, error) {
	if policy.SlotDurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: slot duration must be positive, got %d",
			ErrInvalidScheduleConfig, policy.SlotDurationMinutes)
	}

	dayStart, err := policy.BusinessHoursStart.On(date)
	if err != nil {
		return nil, fmt.Errorf("%w: business hours start: %v", ErrInvalidScheduleConfig, err)
	}
	dayEnd, err := policy.BusinessHoursEnd.On(date)
	if err != nil {
		return nil, fmt.Errorf("%w: business hours end: %v", ErrInvalidScheduleConfig, err)
	}

	if !dayStart.Before(dayEnd) {
		return nil, fmt.Errorf("%w: business hours end %s must be after start %s",
			ErrInvalidScheduleConfig, policy.BusinessHoursEnd, policy.BusinessHoursStart)
	}

	step := time.Duration(policy.SlotDurationMinutes) * time.Minute

	grid := make([]time.Time, 0, int(dayEnd.Sub(dayStart)/step))
	for cur := dayStart; !cur.Add(step).After(dayEnd); cur = cur.Add(step) {
		grid = append(grid, cur)
	}

	return grid, nil
}

// barberDay bundles everything needed to decide one barber's availability on
// one date.
type barberDay struct {
	barber       domain.Barber
	windows      []domain.AvailabilityWindow
	appointments []*domain.Appointment
	busy         []calendarsync.BusyInterval
}

// freeAt reports whether the barber can take [start, end) on the given date.
// A barber with no windows for the date works the whole business day; windows
// constrain availability only when present.
func (d *barberDay) freeAt(date time.Time, start, end time.Time) bool {
	if len(d.windows) > 0 {
		inside := false
		for i := range d.windows {
			if d.windows[i].Contains(date, start, end) {
				inside = true
				break
			}
		}
		if !inside {
			return false
		}
	}

	for _, ap := range d.appointments {
		if ap.Overlaps(start, end) {
			return false
		}
	}

	for _, b := range d.busy {
		if b.Start.Before(end) && b.End.After(start) {
			return false
		}
	}

	return true
}

// evaluateSlots marks each candidate slot available or not. A slot is
// available when at least one of the given barbers is free for the full
// booking duration starting at the slot time; BarberIDs records which ones.
// A booking longer than the grid step may not run past dayEnd, so trailing
// slots that cannot hold it are unavailable. Slots starting before
// now+leadTime are unavailable when the date is today. Exactly one slot, the
// earliest available, gets IsNextAvailable.
func evaluateSlots(
	grid []time.Time,
	bookingDuration time.Duration,
	dayEnd time.Time,
	days []barberDay,
	date time.Time,
	now time.Time,
	leadTime time.Duration,
) []domain.Slot {
	var minStart time.Time
	if isSameDay(date, now) {
		minStart = now.Add(leadTime)
	}

	slots := make([]domain.Slot, 0, len(grid))
	for _, slotStart := range grid {
		slotEnd := slotStart.Add(bookingDuration)

		slot := domain.Slot{
			Time:            types.NewTimeString(slotStart),
			DurationMinutes: int(bookingDuration / time.Minute),
		}

		if slotEnd.After(dayEnd) {
			slots = append(slots, slot)
			continue
		}

		if !minStart.IsZero() && slotStart.Before(minStart) {
			slots = append(slots, slot)
			continue
		}

		for i := range days {
			if days[i].freeAt(date, slotStart, slotEnd) {
				slot.BarberIDs = append(slot.BarberIDs, days[i].barber.ID)
			}
		}
		slot.Available = len(slot.BarberIDs) > 0

		slots = append(slots, slot)
	}

	domain.MarkNextAvailable(slots)
	return slots
}

// isSameDay reports whether two instants fall on the same calendar date.
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast reports whether the date is before today.
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
