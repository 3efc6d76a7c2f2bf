package cli

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/painelhub/painelcore/internal/painelsrv/catalog"
	painelcfg "github.com/painelhub/painelcore/internal/painelsrv/config"
	"github.com/painelhub/painelcore/internal/painelsrv/db/dbmanager"
	"github.com/painelhub/painelcore/internal/painelsrv/db/models"
	"github.com/painelhub/painelcore/internal/painelsrv/db/mysql"
	"github.com/painelhub/painelcore/internal/painelsrv/userauth"
)

// cmdContext returns the logger-carrying context for one command run,
// canceled on SIGINT or SIGTERM.
func cmdContext() (context.Context, context.CancelFunc) {
	ctx := log.Logger.WithContext(context.Background())
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}

// runtime wires the pool and the services for one command invocation.
type runtime struct {
	settings *painelcfg.Settings
	pool     *dbmanager.Pool
	stores   *mysql.Stores
	catalog  *catalog.Service
	users    *userauth.Service
}

// newRuntime opens the pool and builds the service graph. The pool comes up
// even when the database is unreachable; commands that hit storage get the
// recorded cause on first use instead of a crash here.
func newRuntime(ctx context.Context) (*runtime, error) {
	settings := painelcfg.Load()
	cfg := getConfig()

	pool := dbmanager.Open(ctx, settings,
		dbmanager.WithAcquireTimeout(cfg.AcquireTimeout.Duration),
		dbmanager.WithQueryTimeout(cfg.QueryTimeout.Duration),
	)

	manifest, err := catalog.DefaultManifest()
	if err != nil {
		pool.Close()
		return nil, err
	}

	stores := mysql.New(pool)
	catalogSvc := catalog.NewService(stores.Catalog(), manifest)
	userSvc := userauth.NewService(stores.Credentials(), stores.Accounts(), catalogSvc)

	return &runtime{
		settings: settings,
		pool:     pool,
		stores:   stores,
		catalog:  catalogSvc,
		users:    userSvc,
	}, nil
}

func (r *runtime) Close() {
	if err := r.pool.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close connection pool")
	}
}

// resolveProduct finds one stored product by numeric id or exact name.
func resolveProduct(ctx context.Context, svc *catalog.Service, ref string) (models.Product, error) {
	products, err := svc.ListAll(ctx)
	if err != nil {
		return models.Product{}, err
	}

	if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
		for _, p := range products {
			if p.ID.Valid && p.ID.Int64 == id {
				return p, nil
			}
		}
	}
	for _, p := range products {
		if p.Name == ref {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("no product matches %q", ref)
}
