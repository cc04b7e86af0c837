package appointment

import "errors"

var (
	// ErrAppointmentNotFound is returned when no appointment matches.
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrSlotTaken is returned when the database constraint layer rejects an
	// insert or interval update because the interval is already occupied.
	// This is the backstop behind the transactional overlap check.
	ErrSlotTaken = errors.New("appointment.repository: slot already taken")

	// ErrBuildQuery is returned when a SQL statement cannot be built.
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery is returned when a SQL statement fails to execute.
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow is returned when a result row cannot be scanned.
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)
