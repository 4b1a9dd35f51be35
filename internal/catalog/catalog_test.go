package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"firstlook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, c.Seeds)
	assert.NotEmpty(t, c.Packages)

	seed, ok := c.SeedByTitle("  moonlit VOWS ")
	require.True(t, ok)
	assert.Equal(t, models.SubgenreParanormal, seed.Subgenre)
	assert.True(t, seed.IsSeries())

	pkg, ok := c.Package("starter")
	require.True(t, ok)
	assert.Equal(t, 100, pkg.Coins)

	_, ok = c.Package("nope")
	assert.False(t, ok)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `
seeds:
  - titleIdea: Only One
    subgenre: royal
    premise: A premise.
packages:
  - id: p1
    name: P1
    coins: 10
    priceCents: 100
    currency: usd
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	require.Len(t, c.Seeds, 1)
	assert.Equal(t, 1, c.Seeds[0].Parts, "parts defaults to 1")
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"unknown subgenre": "seeds:\n  - titleIdea: A\n    subgenre: western\n",
		"missing title":    "seeds:\n  - subgenre: royal\n",
		"duplicate title":  "seeds:\n  - titleIdea: A\n    subgenre: royal\n  - titleIdea: ' a '\n    subgenre: royal\n",
		"negative cost":    "seeds:\n  - titleIdea: A\n    subgenre: royal\n    coinCost: -1\n",
		"package no price": "packages:\n  - id: p\n    coins: 10\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}

	_, err := Parse([]byte("seeds: ["))
	assert.Error(t, err)
}
