package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/painelhub/painelcore/internal/painelsrv/db/dberror"
	"github.com/painelhub/painelcore/internal/painelsrv/db/dbmanager"
	"github.com/painelhub/painelcore/internal/painelsrv/db/models"
)

type credentialStore struct {
	stores *Stores
}

// LookupByUsername returns the stored account including its password hash.
// The credential service owns what happens to the hash afterwards.
func (cr *credentialStore) LookupByUsername(ctx context.Context, username string) (*models.UserAccount, error) {
	var account models.UserAccount
	err := cr.stores.withLease(ctx, func(ctx context.Context, lease *dbmanager.Lease) error {
		row := lease.QueryRowContext(ctx,
			"SELECT id, usuario, nome, tipo, senha_hash, data_criacao FROM usuarios WHERE usuario = ?",
			username,
		)
		err := row.Scan(&account.ID, &account.Username, &account.DisplayName,
			&account.Role, &account.PasswordHash, &account.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return dberror.ErrNotFound.Msg("user " + username)
		}
		if err != nil {
			return mapError(err, "failed to look up user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}
