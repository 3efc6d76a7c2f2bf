// Package mysql implements the storage interfaces over the panel schema.
// Each store method is one unit of work: it acquires a lease from the pool,
// bounds its context with the pool's query timeout and releases the lease
// before returning.
package mysql

import (
	"context"
	"errors"

	mysqldrv "github.com/go-sql-driver/mysql"

	"github.com/painelhub/painelcore/internal/painelsrv/db"
	"github.com/painelhub/painelcore/internal/painelsrv/db/dberror"
	"github.com/painelhub/painelcore/internal/painelsrv/db/dbmanager"
)

// MySQL error numbers the stores map to sentinels.
const (
	erDupEntry        = 1062
	erNoReferencedRow = 1452
)

// Stores bundles the schema's store implementations over one pool.
type Stores struct {
	pool *dbmanager.Pool
}

// New builds the store set on top of the pool.
func New(pool *dbmanager.Pool) *Stores {
	return &Stores{pool: pool}
}

// Catalog returns the product store.
func (s *Stores) Catalog() db.CatalogStore {
	return &catalogStore{stores: s}
}

// Credentials returns the login lookup store.
func (s *Stores) Credentials() db.CredentialStore {
	return &credentialStore{stores: s}
}

// Accounts returns the account administration store.
func (s *Stores) Accounts() db.AccountStore {
	return &accountStore{stores: s}
}

// withLease runs fn as one unit of work on a fresh lease.
func (s *Stores) withLease(ctx context.Context, fn func(context.Context, *dbmanager.Lease) error) error {
	lease, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer lease.Release(ctx)

	workCtx, cancel := lease.Bound(ctx)
	defer cancel()
	return fn(workCtx, lease)
}

// mapError translates driver errors into the dberror sentinels, keeping the
// driver error attached underneath.
func mapError(err error, msg string) error {
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case erDupEntry:
			return dberror.ErrAlreadyExists.MsgErr(msg, err)
		case erNoReferencedRow:
			return dberror.ErrNotFound.MsgErr(msg, err)
		}
	}
	return dberror.ErrDatabase.MsgErr(msg, err)
}
