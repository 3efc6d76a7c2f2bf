package dbmanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painelhub/painelcore/internal/painelsrv/db/dberror"
)

func newMockPool(t *testing.T) (*Pool, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return FromDB(db), mock
}

func TestAcquireFailsFastWhenUnusable(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	cause := errors.New("dial tcp 127.0.0.1:3306: connection refused")
	p := newPool()
	p.initErr = dberror.ErrPoolInit.Err(cause)

	lease, err := p.Acquire(ctx)
	assert.Nil(t, lease)
	assert.ErrorIs(t, err, dberror.ErrUnavailable)
	assert.ErrorIs(t, err, dberror.ErrPoolInit)
	assert.ErrorIs(t, err, cause)

	// Ping answers from the recorded state, no dialing.
	err = p.Ping(ctx)
	assert.ErrorIs(t, err, dberror.ErrUnavailable)
}

func TestAcquireAfterClose(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	p, _ := newMockPool(t)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	lease, err := p.Acquire(ctx)
	assert.Nil(t, lease)
	assert.ErrorIs(t, err, dberror.ErrUnavailable)
}

func TestLeaseQueryAndRelease(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	p, mock := newMockPool(t)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	lease, err := p.Acquire(ctx)
	require.NoError(t, err)

	rows, err := lease.QueryContext(ctx, "SELECT 1")
	require.NoError(t, err)
	var n int
	require.True(t, rows.Next())
	require.NoError(t, rows.Scan(&n))
	require.NoError(t, rows.Close())
	assert.Equal(t, 1, n)

	lease.Release(ctx)
	lease.Release(ctx) // idempotent

	requests, returns := p.Stats()
	assert.Equal(t, uint64(1), requests)
	assert.Equal(t, uint64(1), returns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTxCommits(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	p, mock := newMockPool(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE produtos").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	lease, err := p.Acquire(ctx)
	require.NoError(t, err)
	defer lease.Release(ctx)

	err = lease.WithinTx(ctx, func(tx *sql.Tx) error {
		_, execErr := tx.ExecContext(ctx, "UPDATE produtos SET status = ?", "Ready")
		return execErr
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	p, mock := newMockPool(t)

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE produtos").WillReturnError(boom)
	mock.ExpectRollback()

	lease, err := p.Acquire(ctx)
	require.NoError(t, err)
	defer lease.Release(ctx)

	err = lease.WithinTx(ctx, func(tx *sql.Tx) error {
		_, execErr := tx.ExecContext(ctx, "UPDATE produtos SET status = ?", "Ready")
		return execErr
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPingHealthy(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	p := FromDB(db)

	mock.ExpectPing()
	assert.NoError(t, p.Ping(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}
