package database

import (
	"testing"

	"firstlook/internal/models"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
)

func TestPatchUpdates(t *testing.T) {
	genre := models.SubgenreHistorical
	cost := 0
	premium := false

	t.Run("all fields", func(t *testing.T) {
		updates := patchUpdates(models.StoryPatch{
			StoryID:    "s1",
			Subgenre:   &genre,
			CoinCost:   &cost,
			IsPremium:  &premium,
			RemoveTags: true,
		})

		paths := make([]string, 0, len(updates))
		for _, u := range updates {
			paths = append(paths, u.Path)
		}
		assert.Equal(t, []string{"subgenre", "coinCost", "isPremium", "tags"}, paths)
		assert.Equal(t, "historical", updates[0].Value)
		assert.Equal(t, 0, updates[1].Value)
		assert.Equal(t, false, updates[2].Value)
		assert.Equal(t, firestore.Delete, updates[3].Value)
	})

	t.Run("only tags", func(t *testing.T) {
		updates := patchUpdates(models.StoryPatch{StoryID: "s1", RemoveTags: true})
		assert.Len(t, updates, 1)
		assert.Equal(t, "tags", updates[0].Path)
	})

	t.Run("empty patch", func(t *testing.T) {
		assert.Empty(t, patchUpdates(models.StoryPatch{StoryID: "s1"}))
	})
}
