package appointment

import (
	"context"
	"database/sql"

	"github.com/bookedbarber/booking-service/pkg/dbmetrics"
)

// Reuse the dbmetrics executor interfaces so the repository runs unchanged
// against *sql.DB, the metered wrapper, or an open transaction.
type DBExecutor = dbmetrics.DBExecutor
type TxExecutor = dbmetrics.TxExecutor

// TxBeginner is the interface for opening transactions. Satisfied by *sql.DB
// and *dbmetrics.DB.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (TxExecutor, error)
}
