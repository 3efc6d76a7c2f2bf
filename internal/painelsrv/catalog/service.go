// Package catalog implements the product catalog service: the self-healing
// principal listing the panels render, access stamping and status updates.
package catalog

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"

	"github.com/painelhub/painelcore/internal/common/apperrors"
	"github.com/painelhub/painelcore/internal/painelsrv/db"
	"github.com/painelhub/painelcore/internal/painelsrv/db/models"
)

var (
	// ErrInvalidInput rejects a call before any storage work happens.
	ErrInvalidInput apperrors.Error = apperrors.New("invalid catalog input")

	// ErrInvalidManifest marks a manifest that fails to parse or validate.
	ErrInvalidManifest apperrors.Error = apperrors.New("invalid catalog manifest")
)

// Service exposes the catalog operations. Safe for concurrent use.
type Service struct {
	store    db.CatalogStore
	manifest *Manifest
	flights  singleflight.Group
}

// NewService builds the catalog service over the store. The manifest decides
// which products are principal and in what order.
func NewService(store db.CatalogStore, manifest *Manifest) *Service {
	return &Service{store: store, manifest: manifest}
}

// Manifest returns the manifest the service was built with.
func (s *Service) Manifest() *Manifest {
	return s.manifest
}

// ListPrincipal returns the principal catalog in manifest order, creating
// rows for any names missing from storage first. Concurrent callers share a
// single flight; racing panels that slip past the flight converge anyway
// because provisioning underneath absorbs duplicates.
func (s *Service) ListPrincipal(ctx context.Context) ([]models.Product, error) {
	v, err, _ := s.flights.Do("principal", func() (any, error) {
		return s.listPrincipal(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Product), nil
}

func (s *Service) listPrincipal(ctx context.Context) ([]models.Product, error) {
	names := s.manifest.Products

	products, err := s.store.FetchByNames(ctx, names)
	if err != nil {
		return nil, err
	}

	missing := missingNames(names, products)
	if len(missing) == 0 {
		return products, nil
	}

	log.Ctx(ctx).Info().Strs("names", missing).Msg("provisioning missing catalog products")
	if err := s.store.InsertMissing(ctx, missing); err != nil {
		return nil, err
	}
	return s.store.FetchByNames(ctx, names)
}

// ListAll returns every stored product, for the administration view.
func (s *Service) ListAll(ctx context.Context) ([]models.Product, error) {
	return s.store.FetchAll(ctx)
}

// RecordAccess stamps one product's last access and appends its log entry.
// Virtual entries never reach storage.
func (s *Service) RecordAccess(ctx context.Context, product models.Product, user string) error {
	if product.Virtual() {
		return ErrInvalidInput.Msg("product has no storage id")
	}
	user = strings.TrimSpace(user)
	if user == "" {
		return ErrInvalidInput.Msg("user is required")
	}
	return s.store.TouchAndLog(ctx, product.ID.Int64, user)
}

// RecordGlobalAccess stamps every product for the user, one log entry per
// product. Called after a successful login.
func (s *Service) RecordGlobalAccess(ctx context.Context, user string) error {
	user = strings.TrimSpace(user)
	if user == "" {
		return ErrInvalidInput.Msg("user is required")
	}
	return s.store.TouchAllAndLogAll(ctx, user)
}

// UpdateStatus trims and persists a product's status. Empty falls back to
// Under Development; a value outside the vocabulary is persisted as given,
// with a warning, so operator-invented statuses keep working.
func (s *Service) UpdateStatus(ctx context.Context, product models.Product, status string) error {
	if product.Virtual() {
		return ErrInvalidInput.Msg("product has no storage id")
	}
	status = strings.TrimSpace(status)
	if status == "" {
		status = models.StatusUnderDevelopment
	}
	if !models.KnownStatus(status) {
		log.Ctx(ctx).Warn().Str("status", status).Str("product", product.Name).
			Msg("status outside the known vocabulary, persisting as given")
	}
	return s.store.SetStatus(ctx, product.ID.Int64, status)
}

// missingNames diffs the wanted names against the fetched products. Stored
// names are normalized before comparing so a legacy NFD row is not
// re-provisioned forever.
func missingNames(want []string, have []models.Product) []string {
	present := make(map[string]struct{}, len(have))
	for _, p := range have {
		present[norm.NFC.String(p.Name)] = struct{}{}
	}
	var missing []string
	for _, n := range want {
		if _, ok := present[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}
