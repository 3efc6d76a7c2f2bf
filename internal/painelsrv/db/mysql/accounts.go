package mysql

import (
	"context"

	"github.com/painelhub/painelcore/internal/painelsrv/db/dberror"
	"github.com/painelhub/painelcore/internal/painelsrv/db/dbmanager"
	"github.com/painelhub/painelcore/internal/painelsrv/db/models"
)

type accountStore struct {
	stores *Stores
}

// ListAccounts returns every account, newest first. Password hashes are not
// selected; the listing is an administration view.
func (as *accountStore) ListAccounts(ctx context.Context) ([]models.UserAccount, error) {
	var accounts []models.UserAccount
	err := as.stores.withLease(ctx, func(ctx context.Context, lease *dbmanager.Lease) error {
		rows, err := lease.QueryContext(ctx,
			"SELECT id, usuario, nome, tipo, data_criacao FROM usuarios ORDER BY data_criacao DESC",
		)
		if err != nil {
			return mapError(err, "failed to list accounts")
		}
		defer rows.Close()

		accounts = []models.UserAccount{}
		for rows.Next() {
			var a models.UserAccount
			if err := rows.Scan(&a.ID, &a.Username, &a.DisplayName, &a.Role, &a.CreatedAt); err != nil {
				return dberror.ErrDatabase.MsgErr("failed to scan account row", err)
			}
			accounts = append(accounts, a)
		}
		if err := rows.Err(); err != nil {
			return dberror.ErrDatabase.MsgErr("failed to read account rows", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// CreateAccount inserts the account and fills in the generated ID.
func (as *accountStore) CreateAccount(ctx context.Context, account *models.UserAccount) error {
	return as.stores.withLease(ctx, func(ctx context.Context, lease *dbmanager.Lease) error {
		res, err := lease.ExecContext(ctx,
			"INSERT INTO usuarios (nome, usuario, senha_hash, tipo, data_criacao) VALUES (?, ?, ?, ?, NOW())",
			account.DisplayName, account.Username, account.PasswordHash, account.Role,
		)
		if err != nil {
			return mapError(err, "failed to create account")
		}
		if id, err := res.LastInsertId(); err == nil {
			account.ID = id
		}
		return nil
	})
}

// UpdateAccount sets the role and, when passwordHash is non-empty, the
// stored hash. MySQL reports changed rows rather than matched rows, so a
// same-value update cannot be told apart from a missing user; existence is
// not checked here.
func (as *accountStore) UpdateAccount(ctx context.Context, username, role, passwordHash string) error {
	return as.stores.withLease(ctx, func(ctx context.Context, lease *dbmanager.Lease) error {
		var err error
		if passwordHash != "" {
			_, err = lease.ExecContext(ctx,
				"UPDATE usuarios SET tipo = ?, senha_hash = ? WHERE usuario = ?",
				role, passwordHash, username,
			)
		} else {
			_, err = lease.ExecContext(ctx,
				"UPDATE usuarios SET tipo = ? WHERE usuario = ?",
				role, username,
			)
		}
		if err != nil {
			return mapError(err, "failed to update account")
		}
		return nil
	})
}

// DeleteAccount removes one account. DELETE affected-row counts are exact,
// so a missing username maps to ErrNotFound.
func (as *accountStore) DeleteAccount(ctx context.Context, username string) error {
	return as.stores.withLease(ctx, func(ctx context.Context, lease *dbmanager.Lease) error {
		res, err := lease.ExecContext(ctx, "DELETE FROM usuarios WHERE usuario = ?", username)
		if err != nil {
			return mapError(err, "failed to delete account")
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return dberror.ErrNotFound.Msg("user " + username)
		}
		return nil
	})
}
