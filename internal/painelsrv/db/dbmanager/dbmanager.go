// Package dbmanager provides the MySQL connection pool and the scoped
// leases the storage layer works through. The pool is constructed once and
// passed down; there is no package-level instance.
package dbmanager

import (
	"context"
	"database/sql"
	"sync/atomic"
	"time"

	retry "github.com/avast/retry-go/v4"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"github.com/painelhub/painelcore/internal/painelsrv/config"
	"github.com/painelhub/painelcore/internal/painelsrv/db/dberror"
)

const (
	defaultAcquireTimeout = 5 * time.Second
	defaultQueryTimeout   = 5 * time.Second
	connMaxLifetime       = 30 * time.Minute
	connMaxIdleTime       = 5 * time.Minute
	pingAttempts          = 3
)

// Option adjusts pool behavior at construction.
type Option func(*Pool)

// WithAcquireTimeout bounds how long Acquire waits for a free connection.
func WithAcquireTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.acquireTimeout = d
		}
	}
}

// WithQueryTimeout sets the deadline Bound applies to one unit of work.
func WithQueryTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.queryTimeout = d
		}
	}
}

// Pool is a bounded MySQL connection pool handing out scoped leases. Open
// always returns a Pool, even on failure: an unusable pool answers every
// Acquire fast with dberror.ErrUnavailable wrapping the recorded cause
// instead of re-dialing a database that is known to be down.
type Pool struct {
	db             *sql.DB
	target         string // redacted form, safe for logs
	initErr        error
	closed         atomic.Bool
	acquireTimeout time.Duration
	queryTimeout   time.Duration
	leaseRequests  uint64
	leaseReturns   uint64
}

func newPool(opts ...Option) *Pool {
	p := &Pool{
		acquireTimeout: defaultAcquireTimeout,
		queryTimeout:   defaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open builds the pool from settings and verifies connectivity, retrying
// the ping a few times with backoff before giving up and marking the pool
// unusable.
func Open(ctx context.Context, settings *config.Settings, opts ...Option) *Pool {
	p := newPool(opts...)
	p.target = settings.Redacted()

	sqlDB, err := sql.Open("mysql", settings.DSN())
	if err != nil {
		p.initErr = dberror.ErrPoolInit.Err(err)
		log.Ctx(ctx).Error().Err(err).Str("target", p.target).Msg("failed to open database handle")
		return p
	}

	sqlDB.SetMaxOpenConns(settings.PoolSize)
	sqlDB.SetMaxIdleConns(settings.PoolSize)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	err = retry.Do(
		func() error { return sqlDB.PingContext(ctx) },
		retry.Attempts(pingAttempts),
		retry.Delay(1*time.Second),
		retry.DelayType(retry.BackOffDelay),
	)
	if err != nil {
		sqlDB.Close()
		p.initErr = dberror.ErrPoolInit.Err(err)
		log.Ctx(ctx).Error().Err(err).Str("target", p.target).Msg("database unreachable, pool marked unusable")
		return p
	}

	p.db = sqlDB
	log.Ctx(ctx).Info().Str("target", p.target).Int("pool_size", settings.PoolSize).Msg("database pool ready")
	return p
}

// FromDB wraps an existing handle. Tests and migration tooling use this;
// Open is the production path.
func FromDB(db *sql.DB, opts ...Option) *Pool {
	p := newPool(opts...)
	p.db = db
	return p
}

// Err reports the initialization failure, nil when the pool came up.
func (p *Pool) Err() error {
	return p.initErr
}

// Acquire leases one connection for a single unit of work. The wait for a
// free slot is bounded by the acquire timeout; an unusable or closed pool
// fails fast.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	if p.initErr != nil {
		return nil, dberror.ErrUnavailable.Err(p.initErr)
	}
	if p.closed.Load() {
		return nil, dberror.ErrUnavailable.Msg("pool is closed")
	}

	acquireCtx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	defer cancel()

	conn, err := p.db.Conn(acquireCtx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("target", p.target).Msg("failed to obtain connection")
		return nil, dberror.ErrUnavailable.Err(err)
	}

	atomic.AddUint64(&p.leaseRequests, 1)
	return &Lease{conn: conn, pool: p}, nil
}

// Ping verifies connectivity. Unusable pools answer with the recorded cause
// without touching the network.
func (p *Pool) Ping(ctx context.Context) error {
	if p.initErr != nil {
		return dberror.ErrUnavailable.Err(p.initErr)
	}
	if p.closed.Load() {
		return dberror.ErrUnavailable.Msg("pool is closed")
	}
	if err := p.db.PingContext(ctx); err != nil {
		return dberror.ErrDatabase.MsgErr("ping failed", err)
	}
	return nil
}

// Handle exposes the underlying handle for migration tooling. Application
// code goes through leases.
func (p *Pool) Handle() *sql.DB {
	return p.db
}

// Stats reports leases handed out and returned since the pool was built.
func (p *Pool) Stats() (requests, returns uint64) {
	return atomic.LoadUint64(&p.leaseRequests), atomic.LoadUint64(&p.leaseReturns)
}

// OpenConns returns the number of open connections in the pool.
func (p *Pool) OpenConns() int {
	if p.db == nil {
		return 0
	}
	return p.db.Stats().OpenConnections
}

// Close shuts the pool down. Idempotent; later Acquire calls fail fast.
func (p *Pool) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}
