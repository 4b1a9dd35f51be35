package mocks

import (
	"context"

	"firstlook/internal/interfaces"
	"firstlook/internal/models"

	"github.com/stretchr/testify/mock"
)

// StoryRepository is a mock type for the StoryRepository type
type StoryRepository struct {
	mock.Mock
}

func (m *StoryRepository) ListAll(ctx context.Context) ([]models.Story, error) {
	args := m.Called(ctx)
	var r0 []models.Story
	if v := args.Get(0); v != nil {
		r0 = v.([]models.Story)
	}
	return r0, args.Error(1)
}

func (m *StoryRepository) ListPublished(ctx context.Context) ([]models.Story, error) {
	args := m.Called(ctx)
	var r0 []models.Story
	if v := args.Get(0); v != nil {
		r0 = v.([]models.Story)
	}
	return r0, args.Error(1)
}

func (m *StoryRepository) GetByID(ctx context.Context, storyID string) (*models.Story, error) {
	args := m.Called(ctx, storyID)
	var r0 *models.Story
	if v := args.Get(0); v != nil {
		r0 = v.(*models.Story)
	}
	return r0, args.Error(1)
}

func (m *StoryRepository) GetByIDs(ctx context.Context, storyIDs []string) (map[string]models.Story, error) {
	args := m.Called(ctx, storyIDs)
	var r0 map[string]models.Story
	if v := args.Get(0); v != nil {
		r0 = v.(map[string]models.Story)
	}
	return r0, args.Error(1)
}

func (m *StoryRepository) ListBySeries(ctx context.Context, seriesID string) ([]models.Story, error) {
	args := m.Called(ctx, seriesID)
	var r0 []models.Story
	if v := args.Get(0); v != nil {
		r0 = v.([]models.Story)
	}
	return r0, args.Error(1)
}

func (m *StoryRepository) CreateMany(ctx context.Context, stories []models.Story) error {
	args := m.Called(ctx, stories)
	return args.Error(0)
}

func (m *StoryRepository) ApplyPatches(ctx context.Context, patches []models.StoryPatch) error {
	args := m.Called(ctx, patches)
	return args.Error(0)
}

var _ interfaces.StoryRepository = (*StoryRepository)(nil)
