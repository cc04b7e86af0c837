package domain

import (
	"time"

	"github.com/bookedbarber/booking-service/pkg/types"
)

// AvailabilityWindow is a time range in which a barber accepts bookings.
// Weekly rows (Weekday set) recur; override rows (Date set) replace every
// weekly row for that barber on that date. Managed by the barber-facing
// schedule tooling; read-only to the scheduling engine.
type AvailabilityWindow struct {
	ID       int64
	BarberID int64

	// Exactly one of Weekday and Date is set.
	Weekday *int
	Date    *time.Time

	StartTime types.TimeString
	EndTime   types.TimeString
	Active    bool
}

// IsOverride reports whether the window targets a specific date rather than a
// recurring weekday.
func (w *AvailabilityWindow) IsOverride() bool {
	return w.Date != nil
}

// Contains reports whether [start, end) falls entirely inside the window,
// anchored on the given date. Malformed windows contain nothing.
func (w *AvailabilityWindow) Contains(date time.Time, start, end time.Time) bool {
	if !w.Active {
		return false
	}
	winStart, err := w.StartTime.On(date)
	if err != nil {
		return false
	}
	winEnd, err := w.EndTime.On(date)
	if err != nil {
		return false
	}
	return !start.Before(winStart) && !end.After(winEnd)
}

// EffectiveWindows selects the windows that apply on the given date: if any
// override row exists for the date, override rows replace all weekly rows.
func EffectiveWindows(windows []AvailabilityWindow, date time.Time) []AvailabilityWindow {
	overrides := make([]AvailabilityWindow, 0)
	weekly := make([]AvailabilityWindow, 0)
	weekday := int(date.Weekday())

	for _, w := range windows {
		switch {
		case w.Date != nil:
			y1, m1, d1 := w.Date.Date()
			y2, m2, d2 := date.Date()
			if y1 == y2 && m1 == m2 && d1 == d2 {
				overrides = append(overrides, w)
			}
		case w.Weekday != nil && *w.Weekday == weekday:
			weekly = append(weekly, w)
		}
	}

	if len(overrides) > 0 {
		return overrides
	}
	return weekly
}
