package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/painelhub/painelcore/internal/painelsrv/db/dberror"
	"github.com/painelhub/painelcore/internal/painelsrv/db/dbmanager"
	"github.com/painelhub/painelcore/internal/painelsrv/db/models"
)

type catalogStore struct {
	stores *Stores
}

const productColumns = "id, nome, status, ultimo_acesso"

// FetchByNames loads the named products preserving the caller's order.
// ORDER BY FIELD keeps the ordering decision in the query instead of a
// client-side sort.
func (cs *catalogStore) FetchByNames(ctx context.Context, names []string) ([]models.Product, error) {
	if len(names) == 0 {
		return []models.Product{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	query := fmt.Sprintf(
		"SELECT %s FROM produtos WHERE nome IN (%s) ORDER BY FIELD(nome, %s)",
		productColumns, placeholders, placeholders,
	)
	args := make([]any, 0, 2*len(names))
	for _, n := range names {
		args = append(args, n)
	}
	for _, n := range names {
		args = append(args, n)
	}

	var products []models.Product
	err := cs.stores.withLease(ctx, func(ctx context.Context, lease *dbmanager.Lease) error {
		rows, err := lease.QueryContext(ctx, query, args...)
		if err != nil {
			return mapError(err, "failed to fetch products by name")
		}
		defer rows.Close()
		products, err = scanProducts(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// FetchAll loads every product ordered by name.
func (cs *catalogStore) FetchAll(ctx context.Context) ([]models.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM produtos ORDER BY nome", productColumns)

	var products []models.Product
	err := cs.stores.withLease(ctx, func(ctx context.Context, lease *dbmanager.Lease) error {
		rows, err := lease.QueryContext(ctx, query)
		if err != nil {
			return mapError(err, "failed to fetch products")
		}
		defer rows.Close()
		products, err = scanProducts(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// InsertMissing provisions catalog rows. INSERT IGNORE plus the unique key
// on nome absorbs concurrent provisioning of the same name.
func (cs *catalogStore) InsertMissing(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	return cs.stores.withLease(ctx, func(ctx context.Context, lease *dbmanager.Lease) error {
		return lease.WithinTx(ctx, func(tx *sql.Tx) error {
			var inserted int64
			for _, name := range names {
				res, err := tx.ExecContext(ctx,
					"INSERT IGNORE INTO produtos (nome, status, ultimo_acesso) VALUES (?, ?, NULL)",
					name, models.StatusReady,
				)
				if err != nil {
					return mapError(err, "failed to provision product")
				}
				n, _ := res.RowsAffected()
				inserted += n
			}
			if inserted > 0 {
				log.Ctx(ctx).Info().Int64("inserted", inserted).Msg("provisioned missing catalog products")
			}
			return nil
		})
	})
}

// TouchAndLog stamps one product and appends its access entry in a single
// transaction.
func (cs *catalogStore) TouchAndLog(ctx context.Context, productID int64, user string) error {
	entry := models.AccessEntry{User: user, ProductID: productID}

	return cs.stores.withLease(ctx, func(ctx context.Context, lease *dbmanager.Lease) error {
		return lease.WithinTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx,
				"UPDATE produtos SET ultimo_acesso = NOW() WHERE id = ?", entry.ProductID,
			); err != nil {
				return mapError(err, "failed to stamp product access")
			}
			// A missing product surfaces here as a foreign key violation.
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO acessos (usuario, produto_id, momento) VALUES (?, ?, NOW())",
				entry.User, entry.ProductID,
			); err != nil {
				return mapError(err, "failed to append access entry")
			}
			return nil
		})
	})
}

// TouchAllAndLogAll stamps every product and appends one access entry per
// product, all in a single transaction.
func (cs *catalogStore) TouchAllAndLogAll(ctx context.Context, user string) error {
	return cs.stores.withLease(ctx, func(ctx context.Context, lease *dbmanager.Lease) error {
		return lease.WithinTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx,
				"UPDATE produtos SET ultimo_acesso = NOW()",
			); err != nil {
				return mapError(err, "failed to stamp products")
			}
			res, err := tx.ExecContext(ctx,
				"INSERT INTO acessos (usuario, produto_id, momento) SELECT ?, id, NOW() FROM produtos",
				user,
			)
			if err != nil {
				return mapError(err, "failed to append access entries")
			}
			if n, err := res.RowsAffected(); err == nil {
				log.Ctx(ctx).Debug().Int64("entries", n).Str("user", user).Msg("global access recorded")
			}
			return nil
		})
	})
}

// SetStatus overwrites the status column. MySQL reports changed rows rather
// than matched rows, so a same-value update is indistinguishable from a
// missing product; existence is not checked here.
func (cs *catalogStore) SetStatus(ctx context.Context, productID int64, status string) error {
	return cs.stores.withLease(ctx, func(ctx context.Context, lease *dbmanager.Lease) error {
		if _, err := lease.ExecContext(ctx,
			"UPDATE produtos SET status = ? WHERE id = ?", status, productID,
		); err != nil {
			return mapError(err, "failed to update product status")
		}
		return nil
	})
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Status, &p.LastAccess); err != nil {
			return nil, dberror.ErrDatabase.MsgErr("failed to scan product row", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dberror.ErrDatabase.MsgErr("failed to read product rows", err)
	}
	return products, nil
}
