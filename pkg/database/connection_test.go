package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (f *fakeTx) Commit(ctx context.Context) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	if !f.committed {
		f.rolledBack = true
	}
	return nil
}

type fakeBeginner struct {
	tx       *fakeTx
	err      error
	deadline time.Time
}

func (f *fakeBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	f.deadline, _ = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return f.tx, nil
}

func TestWithTx(t *testing.T) {
	tests := []struct {
		name         string
		fnErr        error
		beginErr     error
		commitErr    error
		wantErr      bool
		wantCommit   bool
		wantRollback bool
	}{
		{name: "commits on success", wantCommit: true},
		{name: "rolls back on fn error", fnErr: errors.New("insert team"), wantErr: true, wantRollback: true},
		{name: "begin failure", beginErr: errors.New("pool closed"), wantErr: true},
		{name: "commit failure rolls back", commitErr: errors.New("serialization"), wantErr: true, wantRollback: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &fakeTx{commitErr: tt.commitErr}
			b := &fakeBeginner{tx: tx, err: tt.beginErr}

			err := WithTx(context.Background(), b, time.Second, func(pgx.Tx) error { return tt.fnErr })

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCommit, tx.committed)
			assert.Equal(t, tt.wantRollback, tx.rolledBack)
		})
	}
}

func TestWithTx_AppliesDefaultTimeout(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	start := time.Now()

	require.NoError(t, WithTx(context.Background(), b, 0, func(pgx.Tx) error { return nil }))
	assert.WithinDuration(t, start.Add(DefaultTxTimeout), b.deadline, time.Second)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, IsNoRows(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, IsNoRows(errors.New("other")))
}
