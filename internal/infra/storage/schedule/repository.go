package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/pkg/dbmetrics"
	"github.com/bookedbarber/booking-service/pkg/psqlbuilder"
)

// Repository reads the barber catalog and availability windows. This data is
// owned by the staff-facing schedule tooling; the scheduling engine never
// writes it.
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository creates a schedule repository.
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetBarber fetches one barber.
func (r *Repository) GetBarber(ctx context.Context, id int64) (*domain.Barber, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "shop_id", "name", "active").
		From("barbers").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBarber - build select query: %v", ErrBuildQuery, err)
	}

	var b domain.Barber
	err = executor.QueryRowContext(ctx, query, args...).Scan(&b.ID, &b.ShopID, &b.Name, &b.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBarberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBarber - scan barber: %w", ErrScanRow, err)
	}

	return &b, nil
}

// ListActiveBarbers returns the active barbers of a shop, ordered by id.
// Aggregate availability unions over this set.
func (r *Repository) ListActiveBarbers(ctx context.Context, shopID int64) ([]domain.Barber, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "shop_id", "name", "active").
		From("barbers").
		Where(squirrel.Eq{"shop_id": shopID, "active": true}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveBarbers - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveBarbers - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	barbers := make([]domain.Barber, 0)
	for rows.Next() {
		var b domain.Barber
		if err := rows.Scan(&b.ID, &b.ShopID, &b.Name, &b.Active); err != nil {
			return nil, fmt.Errorf("%w: ListActiveBarbers - scan barber: %w", ErrScanRow, err)
		}
		barbers = append(barbers, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveBarbers - rows error: %w", ErrScanRow, err)
	}

	return barbers, nil
}

// GetService fetches an active service of a shop.
func (r *Repository) GetService(ctx context.Context, shopID, serviceID int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "shop_id", "name", "duration_minutes", "price", "active").
		From("services").
		Where(squirrel.Eq{"id": serviceID, "shop_id": shopID, "active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.Service
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID, &s.ShopID, &s.Name, &s.DurationMinutes, &s.Price, &s.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %w", ErrScanRow, err)
	}

	return &s, nil
}

// BarberOffersService reports whether the barber is assigned to the service.
func (r *Repository) BarberOffersService(ctx context.Context, barberID, serviceID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("barber_services").
		Where(squirrel.Eq{"barber_id": barberID, "service_id": serviceID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: BarberOffersService - build select query: %v", ErrBuildQuery, err)
	}

	var count int64
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: BarberOffersService - scan count: %w", ErrScanRow, err)
	}

	return count > 0, nil
}

// ListWindowsForBarbers returns all availability windows that can apply to
// the given barbers on the given date: weekly rows for that weekday plus
// override rows for that exact date. Override precedence is resolved in the
// domain layer (EffectiveWindows).
func (r *Repository) ListWindowsForBarbers(ctx context.Context, barberIDs []int64, date time.Time) ([]domain.AvailabilityWindow, error) {
	if len(barberIDs) == 0 {
		return []domain.AvailabilityWindow{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	query, args, err := psqlbuilder.Select(
		"id", "barber_id", "weekday", "override_date", "start_time", "end_time", "active",
	).
		From("availability_windows").
		Where(squirrel.Eq{"barber_id": barberIDs}).
		Where(squirrel.Or{
			squirrel.Eq{"weekday": int(date.Weekday())},
			squirrel.Eq{"override_date": dayStart},
		}).
		OrderBy("barber_id ASC, start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListWindowsForBarbers - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListWindowsForBarbers - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	windows := make([]domain.AvailabilityWindow, 0)
	for rows.Next() {
		var w domain.AvailabilityWindow
		var weekday sql.NullInt64
		var overrideDate sql.NullTime

		if err := rows.Scan(&w.ID, &w.BarberID, &weekday, &overrideDate, &w.StartTime, &w.EndTime, &w.Active); err != nil {
			return nil, fmt.Errorf("%w: ListWindowsForBarbers - scan window: %w", ErrScanRow, err)
		}

		if weekday.Valid {
			wd := int(weekday.Int64)
			w.Weekday = &wd
		}
		if overrideDate.Valid {
			d := overrideDate.Time
			w.Date = &d
		}

		windows = append(windows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListWindowsForBarbers - rows error: %w", ErrScanRow, err)
	}

	return windows, nil
}
