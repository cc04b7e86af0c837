package domain

// Time format constants.
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Policy bounds used by validation.
const (
	MinSlotDurationMinutes = 5
	MaxSlotDurationMinutes = 480
	MaxLeadTimeMinutes     = 10080 // 1 week
	MaxNotesLength         = 500
)

// BlockingStatuses occupy their interval and participate in overlap checks.
var BlockingStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
}

// TerminalStatuses accept no further transitions. Their intervals are freed.
var TerminalStatuses = []AppointmentStatus{
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}
