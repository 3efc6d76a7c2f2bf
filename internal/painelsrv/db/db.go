// Package db declares the storage interfaces the service layer depends on.
// The mysql subpackage implements them over the panel schema; tests
// substitute in-memory fakes. Implementations own lease handling: every
// method is one unit of work that acquires and releases its own connection.
package db

import (
	"context"

	"github.com/painelhub/painelcore/internal/painelsrv/db/models"
)

// CatalogStore is the persistence surface for products and access stamps.
type CatalogStore interface {
	// FetchByNames returns the products whose names are listed, in the
	// order the names were given. Names with no row are simply absent.
	FetchByNames(ctx context.Context, names []string) ([]models.Product, error)

	// FetchAll returns every product ordered by name.
	FetchAll(ctx context.Context) ([]models.Product, error)

	// InsertMissing provisions rows for the given names with the ready
	// status and no access stamp. Concurrent provisioning of the same name
	// is absorbed, not an error.
	InsertMissing(ctx context.Context, names []string) error

	// TouchAndLog stamps one product's last access and appends the access
	// log entry, atomically.
	TouchAndLog(ctx context.Context, productID int64, user string) error

	// TouchAllAndLogAll stamps every product and appends one log entry per
	// product for the user, atomically.
	TouchAllAndLogAll(ctx context.Context, user string) error

	// SetStatus overwrites a product's status. No vocabulary validation
	// happens here.
	SetStatus(ctx context.Context, productID int64, status string) error
}

// CredentialStore looks up login accounts for verification.
type CredentialStore interface {
	// LookupByUsername returns the account or dberror.ErrNotFound.
	LookupByUsername(ctx context.Context, username string) (*models.UserAccount, error)
}

// AccountStore is the administration surface for login accounts.
type AccountStore interface {
	// ListAccounts returns every account, newest first, without password
	// hashes.
	ListAccounts(ctx context.Context) ([]models.UserAccount, error)

	// CreateAccount inserts the account and fills in its generated ID.
	// A taken username yields dberror.ErrAlreadyExists.
	CreateAccount(ctx context.Context, account *models.UserAccount) error

	// UpdateAccount sets the role and, when passwordHash is non-empty, the
	// stored hash.
	UpdateAccount(ctx context.Context, username, role, passwordHash string) error

	// DeleteAccount removes the account; dberror.ErrNotFound when absent.
	DeleteAccount(ctx context.Context, username string) error
}
