package get_available_slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/internal/integrations/calendarsync"
	"github.com/bookedbarber/booking-service/pkg/ptr"
)

func testPolicy() domain.BookingPolicy {
	return domain.BookingPolicy{
		BusinessHoursStart:  "09:00",
		BusinessHoursEnd:    "17:00",
		SlotDurationMinutes: 30,
		MinLeadTimeMinutes:  60,
	}
}

func testDate() time.Time {
	return time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
}

func at(h, m int) time.Time {
	return time.Date(2026, 9, 10, h, m, 0, 0, time.UTC)
}

func TestGenerateSlotGrid(t *testing.T) {
	grid, err := generateSlotGrid(testDate(), testPolicy())
	require.NoError(t, err)

	// 09:00-17:00 stepped by 30 minutes: 16 slots, last one 16:30.
	require.Len(t, grid, 16)
	assert.Equal(t, at(9, 0), grid[0])
	assert.Equal(t, at(16, 30), grid[15])
}

func TestGenerateSlotGrid_DropsTrailingPartialSlot(t *testing.T) {
	policy := testPolicy()
	policy.BusinessHoursEnd = "17:15"

	grid, err := generateSlotGrid(testDate(), policy)
	require.NoError(t, err)

	// 17:00 would end at 17:30, past closing; the grid still ends at 16:30.
	require.Len(t, grid, 16)
	assert.Equal(t, at(16, 30), grid[len(grid)-1])
}

func TestGenerateSlotGrid_InvalidConfiguration(t *testing.T) {
	policy := testPolicy()
	policy.BusinessHoursEnd = "09:00"
	_, err := generateSlotGrid(testDate(), policy)
	assert.ErrorIs(t, err, ErrInvalidScheduleConfig)

	policy = testPolicy()
	policy.BusinessHoursStart = "17:00"
	policy.BusinessHoursEnd = "09:00"
	_, err = generateSlotGrid(testDate(), policy)
	assert.ErrorIs(t, err, ErrInvalidScheduleConfig)

	policy = testPolicy()
	policy.SlotDurationMinutes = 0
	_, err = generateSlotGrid(testDate(), policy)
	assert.ErrorIs(t, err, ErrInvalidScheduleConfig)
}

func TestEvaluateSlots_BlockingAppointmentHidesSlot(t *testing.T) {
	grid, err := generateSlotGrid(testDate(), testPolicy())
	require.NoError(t, err)

	days := []barberDay{{
		barber: domain.Barber{ID: 1, Active: true},
		appointments: []*domain.Appointment{{
			BarberID:  1,
			Status:    domain.StatusConfirmed,
			StartTime: at(10, 0),
			EndTime:   at(10, 30),
		}},
	}}

	// now is the day before, so no lead-time filtering applies.
	now := time.Date(2026, 9, 9, 12, 0, 0, 0, time.UTC)
	slots := evaluateSlots(grid, 30*time.Minute, at(17, 0), days, testDate(), now, time.Hour)

	byTime := indexByTime(slots)
	assert.False(t, byTime["10:00"].Available)

	// Half-open boundaries: adjacent slots stay bookable.
	assert.True(t, byTime["09:30"].Available)
	assert.True(t, byTime["10:30"].Available)
}

func TestEvaluateSlots_LongerServiceBlocksPrecedingSlots(t *testing.T) {
	grid, err := generateSlotGrid(testDate(), testPolicy())
	require.NoError(t, err)

	days := []barberDay{{
		barber: domain.Barber{ID: 1, Active: true},
		appointments: []*domain.Appointment{{
			BarberID:  1,
			Status:    domain.StatusPending,
			StartTime: at(11, 0),
			EndTime:   at(11, 30),
		}},
	}}

	now := time.Date(2026, 9, 9, 12, 0, 0, 0, time.UTC)

	// A 60-minute booking starting at 10:30 would run into the 11:00
	// appointment, so 10:30 is out; 11:30 onward is fine.
	slots := evaluateSlots(grid, 60*time.Minute, at(17, 0), days, testDate(), now, time.Hour)

	byTime := indexByTime(slots)
	assert.True(t, byTime["10:00"].Available)
	assert.False(t, byTime["10:30"].Available)
	assert.False(t, byTime["11:00"].Available)
	assert.True(t, byTime["11:30"].Available)
}

func TestEvaluateSlots_BookingMayNotRunPastClose(t *testing.T) {
	grid, err := generateSlotGrid(testDate(), testPolicy())
	require.NoError(t, err)

	days := []barberDay{{barber: domain.Barber{ID: 1, Active: true}}}

	// A 60-minute booking at 16:30 would end at 17:30, past a 17:00 close,
	// even for a barber with no windows. 16:00 is the last bookable start.
	now := time.Date(2026, 9, 9, 12, 0, 0, 0, time.UTC)
	slots := evaluateSlots(grid, 60*time.Minute, at(17, 0), days, testDate(), now, time.Hour)

	byTime := indexByTime(slots)
	assert.True(t, byTime["16:00"].Available)
	assert.False(t, byTime["16:30"].Available)
	assert.Empty(t, byTime["16:30"].BarberIDs)
}

func TestEvaluateSlots_AggregateAnyBarber(t *testing.T) {
	grid, err := generateSlotGrid(testDate(), testPolicy())
	require.NoError(t, err)

	busyAppointment := &domain.Appointment{
		BarberID:  1,
		Status:    domain.StatusConfirmed,
		StartTime: at(10, 0),
		EndTime:   at(10, 30),
	}

	days := []barberDay{
		{barber: domain.Barber{ID: 1, Active: true}, appointments: []*domain.Appointment{busyAppointment}},
		{barber: domain.Barber{ID: 2, Active: true}},
	}

	now := time.Date(2026, 9, 9, 12, 0, 0, 0, time.UTC)
	slots := evaluateSlots(grid, 30*time.Minute, at(17, 0), days, testDate(), now, time.Hour)

	byTime := indexByTime(slots)

	// Barber 2 keeps the slot available even though barber 1 is booked.
	require.True(t, byTime["10:00"].Available)
	assert.Equal(t, []int64{2}, byTime["10:00"].BarberIDs)
	assert.ElementsMatch(t, []int64{1, 2}, byTime["09:00"].BarberIDs)
}

func TestEvaluateSlots_LeadTimeOnSameDay(t *testing.T) {
	grid, err := generateSlotGrid(testDate(), testPolicy())
	require.NoError(t, err)

	days := []barberDay{{barber: domain.Barber{ID: 1, Active: true}}}

	// At 10:15 with a 60-minute lead time, nothing before 11:15 is bookable.
	now := at(10, 15)
	slots := evaluateSlots(grid, 30*time.Minute, at(17, 0), days, testDate(), now, time.Hour)

	byTime := indexByTime(slots)
	assert.False(t, byTime["09:00"].Available)
	assert.False(t, byTime["11:00"].Available)
	assert.True(t, byTime["11:30"].Available)
}

func TestEvaluateSlots_WindowsConstrainWhenPresent(t *testing.T) {
	grid, err := generateSlotGrid(testDate(), testPolicy())
	require.NoError(t, err)

	days := []barberDay{{
		barber: domain.Barber{ID: 1, Active: true},
		windows: []domain.AvailabilityWindow{
			{BarberID: 1, Weekday: ptr.Ptr(int(testDate().Weekday())), StartTime: "12:00", EndTime: "15:00", Active: true},
		},
	}}

	now := time.Date(2026, 9, 9, 12, 0, 0, 0, time.UTC)
	slots := evaluateSlots(grid, 30*time.Minute, at(17, 0), days, testDate(), now, time.Hour)

	byTime := indexByTime(slots)
	assert.False(t, byTime["11:30"].Available)
	assert.True(t, byTime["12:00"].Available)
	assert.True(t, byTime["14:30"].Available)
	assert.False(t, byTime["15:00"].Available)
}

func TestEvaluateSlots_ExternalBusyIntervals(t *testing.T) {
	grid, err := generateSlotGrid(testDate(), testPolicy())
	require.NoError(t, err)

	days := []barberDay{{
		barber: domain.Barber{ID: 1, Active: true},
		busy: []calendarsync.BusyInterval{
			{Start: at(13, 0), End: at(14, 0)},
		},
	}}

	now := time.Date(2026, 9, 9, 12, 0, 0, 0, time.UTC)
	slots := evaluateSlots(grid, 30*time.Minute, at(17, 0), days, testDate(), now, time.Hour)

	byTime := indexByTime(slots)
	assert.True(t, byTime["12:30"].Available)
	assert.False(t, byTime["13:00"].Available)
	assert.False(t, byTime["13:30"].Available)
	assert.True(t, byTime["14:00"].Available)
}

func TestEvaluateSlots_NextAvailableFlag(t *testing.T) {
	grid, err := generateSlotGrid(testDate(), testPolicy())
	require.NoError(t, err)

	days := []barberDay{{
		barber: domain.Barber{ID: 1, Active: true},
		appointments: []*domain.Appointment{{
			BarberID:  1,
			Status:    domain.StatusConfirmed,
			StartTime: at(9, 0),
			EndTime:   at(9, 30),
		}},
	}}

	now := time.Date(2026, 9, 9, 12, 0, 0, 0, time.UTC)
	slots := evaluateSlots(grid, 30*time.Minute, at(17, 0), days, testDate(), now, time.Hour)

	flagged := 0
	for _, s := range slots {
		if s.IsNextAvailable {
			flagged++
			assert.Equal(t, "09:30", s.Time.String())
			assert.True(t, s.Available)
		}
	}
	assert.Equal(t, 1, flagged)
}

func indexByTime(slots []domain.Slot) map[string]domain.Slot {
	m := make(map[string]domain.Slot, len(slots))
	for _, s := range slots {
		m[s.Time.String()] = s
	}
	return m
}
