package dbmetrics

import (
	"context"
	"database/sql"
	"time"
)

// DBExecutor is the query surface shared by *sql.DB, *sql.Tx and the metered
// wrappers in this package. Repositories depend on this interface so the same
// code runs inside and outside transactions.
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TxExecutor is a DBExecutor bound to an open transaction.
type TxExecutor interface {
	DBExecutor
	Commit() error
	Rollback() error
}

// Recorder is the metrics surface dbmetrics needs. Satisfied by
// *metrics.Metrics; kept as an interface to avoid the import cycle.
type Recorder interface {
	ObserveDBQuery(operation string, duration time.Duration, err error)
	SetDBPoolStats(db string, open, idle, inUse int)
}

type executorKey struct{}

// WithExecutor stores an open transaction executor in the context. Transaction
// managers use it to route repository calls through the transaction.
func WithExecutor(ctx context.Context, tx TxExecutor) context.Context {
	return context.WithValue(ctx, executorKey{}, tx)
}

// GetExecutor returns the transaction executor from the context if present,
// otherwise the fallback.
func GetExecutor(ctx context.Context, fallback DBExecutor) DBExecutor {
	if tx, ok := ctx.Value(executorKey{}).(TxExecutor); ok {
		return tx
	}
	return fallback
}

// IsInTransaction reports whether the context carries an open transaction.
// Repositories use it to add locking clauses that are only meaningful inside
// a transaction.
func IsInTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(executorKey{}).(TxExecutor)
	return ok
}

// DB wraps *sql.DB and reports per-query latency to a Recorder.
type DB struct {
	db       *sql.DB
	recorder Recorder
	name     string
}

// Wrap creates a metered DB.
func Wrap(db *sql.DB, recorder Recorder, name string) *DB {
	return &DB{db: db, recorder: recorder, name: name}
}

// WrapWithDefault creates a metered DB and starts a background goroutine that
// publishes connection pool gauges every 15 seconds until stopCh is closed.
func WrapWithDefault(db *sql.DB, recorder Recorder, name string, stopCh <-chan struct{}) *DB {
	d := Wrap(db, recorder, name)
	go d.collectPoolStats(15*time.Second, stopCh)
	return d
}

func (d *DB) collectPoolStats(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats := d.db.Stats()
			d.recorder.SetDBPoolStats(d.name, stats.OpenConnections, stats.Idle, stats.InUse)
		case <-stopCh:
			return
		}
	}
}

// ExecContext runs a statement and records its latency.
func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := d.db.ExecContext(ctx, query, args...)
	d.recorder.ObserveDBQuery("exec", time.Since(start), err)
	return res, err
}

// QueryContext runs a query and records its latency.
func (d *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.db.QueryContext(ctx, query, args...)
	d.recorder.ObserveDBQuery("query", time.Since(start), err)
	return rows, err
}

// QueryRowContext runs a single-row query and records its latency. Row errors
// surface at Scan time, so only latency is observed here.
func (d *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := d.db.QueryRowContext(ctx, query, args...)
	d.recorder.ObserveDBQuery("query_row", time.Since(start), nil)
	return row
}

// BeginTx opens a metered transaction.
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (TxExecutor, error) {
	start := time.Now()
	tx, err := d.db.BeginTx(ctx, opts)
	d.recorder.ObserveDBQuery("begin_tx", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return &meteredTx{tx: tx, recorder: d.recorder}, nil
}

type meteredTx struct {
	tx       *sql.Tx
	recorder Recorder
}

func (t *meteredTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := t.tx.ExecContext(ctx, query, args...)
	t.recorder.ObserveDBQuery("tx_exec", time.Since(start), err)
	return res, err
}

func (t *meteredTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.tx.QueryContext(ctx, query, args...)
	t.recorder.ObserveDBQuery("tx_query", time.Since(start), err)
	return rows, err
}

func (t *meteredTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := t.tx.QueryRowContext(ctx, query, args...)
	t.recorder.ObserveDBQuery("tx_query_row", time.Since(start), nil)
	return row
}

func (t *meteredTx) Commit() error {
	start := time.Now()
	err := t.tx.Commit()
	t.recorder.ObserveDBQuery("commit", time.Since(start), err)
	return err
}

func (t *meteredTx) Rollback() error {
	return t.tx.Rollback()
}
