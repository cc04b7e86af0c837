package schedule

import "errors"

var (
	// ErrBarberNotFound is returned when no barber matches.
	ErrBarberNotFound = errors.New("schedule.repository: barber not found")

	// ErrServiceNotFound is returned when no service matches.
	ErrServiceNotFound = errors.New("schedule.repository: service not found")

	// ErrBuildQuery is returned when a SQL statement cannot be built.
	ErrBuildQuery = errors.New("schedule.repository: failed to build query")

	// ErrExecQuery is returned when a SQL statement fails to execute.
	ErrExecQuery = errors.New("schedule.repository: failed to execute query")

	// ErrScanRow is returned when a result row cannot be scanned.
	ErrScanRow = errors.New("schedule.repository: failed to scan row")
)
