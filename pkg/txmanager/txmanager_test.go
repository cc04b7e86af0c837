package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookedbarber/booking-service/pkg/dbmetrics"
)

type fakeTx struct {
	commits   *int
	rollbacks *int
}

func (t fakeTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (t fakeTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (t fakeTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (t fakeTx) Commit() error {
	*t.commits++
	return nil
}

func (t fakeTx) Rollback() error {
	*t.rollbacks++
	return nil
}

type fakeBeginner struct {
	begins    int
	commits   int
	rollbacks int
}

func (b *fakeBeginner) BeginTx(context.Context, *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	b.begins++
	return fakeTx{commits: &b.commits, rollbacks: &b.rollbacks}, nil
}

func serializationFailureErr() error {
	return &pq.Error{Code: "40001"}
}

func TestIsSerializationFailure_SeesWrappedCause(t *testing.T) {
	// The repository wraps statement errors with a sentinel but keeps the
	// driver error in the chain.
	wrapped := fmt.Errorf("%w: ListOverlapping - execute query: %w",
		errors.New("repository: failed to execute query"), serializationFailureErr())

	assert.True(t, IsSerializationFailure(wrapped))
	assert.False(t, IsSerializationFailure(&pq.Error{Code: "23505"}))
	assert.False(t, IsSerializationFailure(errors.New("plain")))
}

func TestDoSerializable_RetriesStatementLevelFailure(t *testing.T) {
	beginner := &fakeBeginner{}
	m := NewTransactionManager(beginner)

	attempts := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return fmt.Errorf("statement failed: %w", serializationFailureErr())
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, attempts)
	assert.Equal(t, 2, beginner.begins)
	assert.Equal(t, 1, beginner.commits)
	assert.Equal(t, 1, beginner.rollbacks)
}

func TestDoSerializable_ExhaustsRetries(t *testing.T) {
	beginner := &fakeBeginner{}
	m := NewTransactionManager(beginner)

	attempts := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		return serializationFailureErr()
	})
	require.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, maxSerializableRetries, attempts)
}

func TestDoSerializable_NonRetryableErrorReturnsImmediately(t *testing.T) {
	beginner := &fakeBeginner{}
	m := NewTransactionManager(beginner)

	boom := errors.New("boom")
	attempts := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}
