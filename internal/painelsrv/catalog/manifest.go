package catalog

import (
	_ "embed"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/painelhub/painelcore/internal/painelsrv/db/models"
)

//go:embed defaultcatalog.yaml
var defaultCatalogYAML []byte

// Manifest declares the principal catalog and the panel-only entries shown
// to administrators. Product order in the file is display order everywhere.
type Manifest struct {
	Products       []string `yaml:"products" validate:"required,min=1,unique,dive,required"`
	AdminShortcuts []string `yaml:"admin_shortcuts" validate:"unique,dive,required"`
}

// DefaultManifest parses the embedded catalog manifest.
func DefaultManifest() (*Manifest, error) {
	return ParseManifest(defaultCatalogYAML)
}

// ParseManifest decodes and validates a manifest. Names are trimmed and
// normalized to NFC so the accented product names compare consistently with
// whatever encoding storage hands back.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, ErrInvalidManifest.Err(err)
	}
	for i, name := range m.Products {
		m.Products[i] = norm.NFC.String(strings.TrimSpace(name))
	}
	for i, name := range m.AdminShortcuts {
		m.AdminShortcuts[i] = norm.NFC.String(strings.TrimSpace(name))
	}
	if err := validator.New().Struct(&m); err != nil {
		return nil, ErrInvalidManifest.Err(err)
	}
	return &m, nil
}

// VirtualEntries renders the admin shortcuts as panel-only products: no
// storage id, ready status, keyed by name in snapshot diffs.
func (m *Manifest) VirtualEntries() []models.Product {
	entries := make([]models.Product, 0, len(m.AdminShortcuts))
	for _, name := range m.AdminShortcuts {
		entries = append(entries, models.Product{Name: name, Status: models.StatusReady})
	}
	return entries
}
