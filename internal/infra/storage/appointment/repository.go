package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/pkg/dbmetrics"
	"github.com/bookedbarber/booking-service/pkg/psqlbuilder"
)

var selectColumns = []string{
	"id",
	"shop_id",
	"barber_id",
	"service_id",
	"client_id",
	"client_name",
	"client_phone",
	"start_time",
	"end_time",
	"status",
	"service_name",
	"service_duration_minutes",
	"service_price",
	"notes",
	"external_calendar_id",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository persists appointments. It is the single writer of scheduling
// state; every other view of availability is derived from this table.
type Repository struct {
	db DBExecutor
}

// NewRepository creates an appointment repository.
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create inserts a new appointment and fills in the generated fields.
// The partial unique index on (barber_id, start_time) for blocking statuses
// rejects exact-slot duplicates even if the transactional overlap check was
// bypassed; that violation is mapped to ErrSlotTaken.
func (r *Repository) Create(ctx context.Context, ap *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"shop_id",
			"barber_id",
			"service_id",
			"client_id",
			"client_name",
			"client_phone",
			"start_time",
			"end_time",
			"status",
			"service_name",
			"service_duration_minutes",
			"service_price",
			"notes",
			"external_calendar_id",
		).
		Values(
			ap.ShopID,
			ap.BarberID,
			ap.ServiceID,
			ap.ClientID,
			ap.ClientName,
			ap.ClientPhone,
			ap.StartTime,
			ap.EndTime,
			ap.Status,
			ap.ServiceName,
			ap.ServiceDurationMinutes,
			ap.ServicePrice,
			ap.Notes,
			ap.ExternalCalendarID,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&ap.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isConstraintConflict(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	ap.CreatedAt = createdAt.Time
	ap.UpdatedAt = updatedAt.Time

	return ap, nil
}

// GetByID fetches one appointment. When called inside a transaction the row
// is locked FOR UPDATE so concurrent reschedules of the same appointment
// serialize.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(selectColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	ap, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %w", ErrScanRow, err)
	}

	return ap, nil
}

// ListOverlapping returns blocking appointments for the barber whose
// [start_time, end_time) interval intersects [start, end), optionally
// excluding one appointment (the one being rescheduled). Inside a
// transaction the matching rows are locked FOR UPDATE; this is the locking
// re-read of the conflict guard.
func (r *Repository) ListOverlapping(ctx context.Context, barberID int64, start, end time.Time, excludeID *int64) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(selectColumns...).
		From("appointments").
		Where(squirrel.Eq{"barber_id": barberID}).
		Where(squirrel.Eq{"status": blockingStatusStrings()}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start}).
		OrderBy("start_time ASC")

	if excludeID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": *excludeID})
	}

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverlapping - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ListWithFilter returns appointments matching the filter, ordered by start
// time.
func (r *Repository) ListWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(selectColumns...).
		From("appointments").
		OrderBy("start_time ASC")

	if filter.BarberID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"barber_id": *filter.BarberID})
	}
	if filter.ShopID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"shop_id": *filter.ShopID})
	}
	if filter.DayStart != nil {
		selectBuilder = selectBuilder.Where(squirrel.Gt{"end_time": *filter.DayStart})
	}
	if filter.DayEnd != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_time": *filter.DayEnd})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if filter.BlockingOnly {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": blockingStatusStrings()})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// UpdateInterval moves an appointment to a new [start, end) interval. Used by
// reschedule inside the guard transaction, after the new interval was
// verified free under lock.
func (r *Repository) UpdateInterval(ctx context.Context, id int64, start, end time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("start_time", start).
		Set("end_time", end).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateInterval - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if isConstraintConflict(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("%w: UpdateInterval - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateInterval - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// UpdateStatus applies a status transition.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// Cancel marks the appointment cancelled with a reason, freeing its interval
// for future bookings. The row remains for history.
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// blockingStatusStrings converts domain.BlockingStatuses for squirrel Eq.
func blockingStatusStrings() []string {
	statuses := make([]string, len(domain.BlockingStatuses))
	for i, s := range domain.BlockingStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

// isConstraintConflict reports whether err is a unique (23505) or exclusion
// (23P01) violation on the appointments interval constraints.
func isConstraintConflict(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" || pqErr.Code == "23P01"
	}
	return false
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var ap domain.Appointment
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&ap.ID,
		&ap.ShopID,
		&ap.BarberID,
		&ap.ServiceID,
		&ap.ClientID,
		&ap.ClientName,
		&ap.ClientPhone,
		&ap.StartTime,
		&ap.EndTime,
		&ap.Status,
		&ap.ServiceName,
		&ap.ServiceDurationMinutes,
		&ap.ServicePrice,
		&ap.Notes,
		&ap.ExternalCalendarID,
		&ap.CancellationReason,
		&ap.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	ap.CreatedAt = createdAt.Time
	ap.UpdatedAt = updatedAt.Time

	return &ap, nil
}

func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		ap, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %w", ErrScanRow, err)
		}
		appointments = append(appointments, ap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %w", ErrScanRow, err)
	}

	return appointments, nil
}
