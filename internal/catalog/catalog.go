// Package catalog holds the hand-authored generation seeds and the coin
// packages offered at checkout.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"firstlook/internal/analytics"
	"firstlook/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Catalog is the decoded seed and package list.
type Catalog struct {
	Packages []models.CoinPackage `yaml:"packages"`
	Seeds    []models.Seed        `yaml:"seeds"`

	seedsByTitle map[string]models.Seed
	packagesByID map[string]models.CoinPackage
}

// Load reads the catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	data := embeddedCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	c.seedsByTitle = make(map[string]models.Seed, len(c.Seeds))
	for i, s := range c.Seeds {
		if strings.TrimSpace(s.TitleIdea) == "" {
			return nil, fmt.Errorf("%w: seed %d has no titleIdea", models.ErrInvalidInput, i)
		}
		if !s.Subgenre.IsValid() {
			return nil, fmt.Errorf("%w: seed %q has unknown subgenre %q", models.ErrInvalidInput, s.TitleIdea, s.Subgenre)
		}
		if s.Parts < 1 {
			c.Seeds[i].Parts = 1
		}
		if s.CoinCost < 0 {
			return nil, fmt.Errorf("%w: seed %q has negative coinCost", models.ErrInvalidInput, s.TitleIdea)
		}
		key := analytics.NormalizeTitle(s.TitleIdea)
		if _, dup := c.seedsByTitle[key]; dup {
			return nil, fmt.Errorf("%w: duplicate seed title %q", models.ErrInvalidInput, s.TitleIdea)
		}
		c.seedsByTitle[key] = c.Seeds[i]
	}

	c.packagesByID = make(map[string]models.CoinPackage, len(c.Packages))
	for _, p := range c.Packages {
		if p.ID == "" || p.Coins <= 0 || p.PriceCents <= 0 {
			return nil, fmt.Errorf("%w: package %q needs an id, coins and a price", models.ErrInvalidInput, p.ID)
		}
		if _, dup := c.packagesByID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate package id %q", models.ErrInvalidInput, p.ID)
		}
		c.packagesByID[p.ID] = p
	}
	return &c, nil
}

// SeedByTitle matches a title against seed titles, ignoring case and
// surrounding whitespace.
func (c *Catalog) SeedByTitle(title string) (models.Seed, bool) {
	s, ok := c.seedsByTitle[analytics.NormalizeTitle(title)]
	return s, ok
}

func (c *Catalog) Package(id string) (models.CoinPackage, bool) {
	p, ok := c.packagesByID[id]
	return p, ok
}

// AllSeeds returns the seeds in catalog order.
func (c *Catalog) AllSeeds() []models.Seed {
	return c.Seeds
}

// AllPackages returns the coin packages in catalog order.
func (c *Catalog) AllPackages() []models.CoinPackage {
	return c.Packages
}
