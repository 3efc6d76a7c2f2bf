package dbmanager

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/painelhub/painelcore/internal/painelsrv/db/dberror"
)

// Lease is the scoped right to use one pooled connection for a single unit
// of work. The function that acquired it releases it before returning; a
// lease is never stored or carried across refresh cycles. Not safe for
// concurrent use.
type Lease struct {
	conn     *sql.Conn
	pool     *Pool
	released atomic.Bool
}

// Bound derives the per-unit-of-work deadline from the pool's query
// timeout. Storage code wraps its context once, right after Acquire.
func (l *Lease) Bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, l.pool.queryTimeout)
}

// QueryContext runs a query on the leased connection.
func (l *Lease) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return l.conn.QueryContext(ctx, query, args...)
}

// QueryRowContext runs a single-row query on the leased connection.
func (l *Lease) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return l.conn.QueryRowContext(ctx, query, args...)
}

// ExecContext runs a statement on the leased connection.
func (l *Lease) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return l.conn.ExecContext(ctx, query, args...)
}

// WithinTx runs fn inside a transaction on the leased connection: rollback
// on error or panic, commit otherwise. Multi-statement units of work go
// through here so a partial write never survives.
func (l *Lease) WithinTx(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := l.conn.BeginTx(ctx, nil)
	if err != nil {
		return dberror.ErrDatabase.MsgErr("failed to begin transaction", err)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Ctx(ctx).Error().Err(rbErr).Msg("transaction rollback failed")
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return dberror.ErrDatabase.MsgErr("failed to commit transaction", err)
	}
	return nil
}

// Release returns the connection to the pool. Safe to call more than once;
// the usual form is a defer right after Acquire.
func (l *Lease) Release(ctx context.Context) {
	if l == nil || !l.released.CompareAndSwap(false, true) {
		return
	}
	if err := l.conn.Close(); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to return connection to pool")
	}
	atomic.AddUint64(&l.pool.leaseReturns, 1)
}
