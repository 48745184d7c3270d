package simulator

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/cbodonnell/fakegame/pkg/iap"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

// Catalog describes the simulated store.
type Catalog struct {
	Locale          string        `yaml:"locale"`
	PaymentsEnabled bool          `yaml:"payments_enabled"`
	Latency         time.Duration `yaml:"latency"`
	// Owned lists product identifiers the simulated account already bought.
	Owned    []string   `yaml:"owned"`
	Fail     Failures   `yaml:"fail"`
	Products []iap.Item `yaml:"products"`
}

// Failures holds error messages the simulator returns instead of succeeding.
// Empty messages disable the failure.
type Failures struct {
	List    string `yaml:"list"`
	Buy     string `yaml:"buy"`
	Restore string `yaml:"restore"`
}

// DefaultCatalog returns the built-in catalog with one product per store row.
func DefaultCatalog() *Catalog {
	catalog, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in catalog: %v", err))
	}
	return catalog
}

// LoadCatalog reads a catalog YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	return catalog, nil
}

// ParseCatalog parses catalog YAML, rejecting unknown fields.
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := catalog.validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &catalog, nil
}

func (c *Catalog) validate() error {
	seen := make(map[string]struct{}, len(c.Products))
	for i, p := range c.Products {
		if p.ID == "" {
			return fmt.Errorf("product %d has no id", i)
		}
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("duplicate product id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.Price < 0 {
			return fmt.Errorf("product %q has a negative price", p.ID)
		}
	}
	if c.Latency < 0 {
		return fmt.Errorf("latency is negative")
	}
	return nil
}
