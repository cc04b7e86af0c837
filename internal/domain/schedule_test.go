package domain

import (
	"testing"
	"time"

	"github.com/bookedbarber/booking-service/pkg/ptr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveWindows_WeeklyMatch(t *testing.T) {
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, monday.Weekday())

	windows := []AvailabilityWindow{
		{ID: 1, Weekday: ptr.Ptr(1), StartTime: "09:00", EndTime: "13:00", Active: true},
		{ID: 2, Weekday: ptr.Ptr(2), StartTime: "09:00", EndTime: "17:00", Active: true},
	}

	effective := EffectiveWindows(windows, monday)
	require.Len(t, effective, 1)
	assert.Equal(t, int64(1), effective[0].ID)
}

func TestEffectiveWindows_OverrideReplacesWeekly(t *testing.T) {
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	windows := []AvailabilityWindow{
		{ID: 1, Weekday: ptr.Ptr(1), StartTime: "09:00", EndTime: "17:00", Active: true},
		{ID: 2, Date: ptr.Ptr(monday), StartTime: "12:00", EndTime: "15:00", Active: true},
	}

	effective := EffectiveWindows(windows, monday)
	require.Len(t, effective, 1)
	assert.Equal(t, int64(2), effective[0].ID)
	assert.True(t, effective[0].IsOverride())
}

func TestAvailabilityWindow_Contains(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	w := AvailabilityWindow{StartTime: "10:00", EndTime: "14:00", Active: true}

	at := func(h, m int) time.Time {
		return time.Date(2026, 9, 7, h, m, 0, 0, time.UTC)
	}

	assert.True(t, w.Contains(date, at(10, 0), at(10, 30)))
	assert.True(t, w.Contains(date, at(13, 30), at(14, 0)))
	assert.False(t, w.Contains(date, at(9, 30), at(10, 0)))
	assert.False(t, w.Contains(date, at(13, 45), at(14, 15)))

	w.Active = false
	assert.False(t, w.Contains(date, at(10, 0), at(10, 30)))
}
