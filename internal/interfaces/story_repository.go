package interfaces

import (
	"context"

	"firstlook/internal/models"
)

// MaxIDsPerQuery is the document store's limit for "in" queries.
const MaxIDsPerQuery = 30

// StoryRepository is the chapter document store.
//
//go:generate mockery --name StoryRepository --output ./mocks --outpkg mocks --case=underscore
type StoryRepository interface {
	// ListAll returns every chapter regardless of status.
	ListAll(ctx context.Context) ([]models.Story, error)

	// ListPublished returns every chapter with status "published".
	ListPublished(ctx context.Context) ([]models.Story, error)

	// GetByID returns models.ErrStoryNotFound when the document does not exist.
	GetByID(ctx context.Context, storyID string) (*models.Story, error)

	// GetByIDs looks up at most MaxIDsPerQuery ids. Missing ids are simply
	// absent from the result.
	GetByIDs(ctx context.Context, storyIDs []string) (map[string]models.Story, error)

	// ListBySeries returns the chapters of one series in storage order.
	ListBySeries(ctx context.Context, seriesID string) ([]models.Story, error)

	// CreateMany writes new chapter documents in one batch.
	CreateMany(ctx context.Context, stories []models.Story) error

	// ApplyPatches applies maintenance mutations as one grouped write.
	ApplyPatches(ctx context.Context, patches []models.StoryPatch) error
}
