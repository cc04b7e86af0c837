package simpletxmanager

import (
	"context"
	"database/sql"

	"github.com/bookedbarber/booking-service/pkg/dbmetrics"
	"github.com/bookedbarber/booking-service/pkg/txmanager"
)

// TransactionManager adapts a plain *sql.DB to the txmanager contract. Used
// when metrics are disabled and the database is not wrapped by dbmetrics.
type TransactionManager struct {
	inner *txmanager.TransactionManager
}

type plainBeginner struct {
	db *sql.DB
}

func (b plainBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	tx, err := b.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return plainTx{tx}, nil
}

type plainTx struct {
	*sql.Tx
}

// NewTransactionManager creates a TransactionManager over a bare *sql.DB.
func NewTransactionManager(db *sql.DB) *TransactionManager {
	return &TransactionManager{inner: txmanager.NewTransactionManager(plainBeginner{db: db})}
}

// Do runs fn inside a read-committed transaction.
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.inner.Do(ctx, fn)
}

// DoReadOnly runs fn inside a read-only transaction.
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.inner.DoReadOnly(ctx, fn)
}

// DoSerializable runs fn inside a SERIALIZABLE transaction with retries.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.inner.DoSerializable(ctx, fn)
}
