package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"firstlook/internal/analytics"
	"firstlook/internal/models"
	"firstlook/internal/service"
)

type mockLibrary struct{ mock.Mock }

func (m *mockLibrary) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).(*models.UserProfile)
	return r, args.Error(1)
}

func (m *mockLibrary) UpdatePreferences(ctx context.Context, userID string, subgenres []models.Subgenre) (*models.Preferences, error) {
	args := m.Called(ctx, userID, subgenres)
	r, _ := args.Get(0).(*models.Preferences)
	return r, args.Error(1)
}

func (m *mockLibrary) ListStories(ctx context.Context, filter models.StoryFilter) (*service.StoryPage, error) {
	args := m.Called(ctx, filter)
	r, _ := args.Get(0).(*service.StoryPage)
	return r, args.Error(1)
}

func (m *mockLibrary) GetStory(ctx context.Context, userID, storyID string) (*service.StoryView, error) {
	args := m.Called(ctx, userID, storyID)
	r, _ := args.Get(0).(*service.StoryView)
	return r, args.Error(1)
}

func (m *mockLibrary) GetSeries(ctx context.Context, userID, seriesID string) (*service.SeriesView, error) {
	args := m.Called(ctx, userID, seriesID)
	r, _ := args.Get(0).(*service.SeriesView)
	return r, args.Error(1)
}

func (m *mockLibrary) UnlockStory(ctx context.Context, userID, storyID string) (*service.UnlockResult, error) {
	args := m.Called(ctx, userID, storyID)
	r, _ := args.Get(0).(*service.UnlockResult)
	return r, args.Error(1)
}

func (m *mockLibrary) ToggleFavorite(ctx context.Context, userID, storyID string) (bool, error) {
	args := m.Called(ctx, userID, storyID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLibrary) MarkRead(ctx context.Context, userID, storyID string) error {
	return m.Called(ctx, userID, storyID).Error(0)
}

type mockCheckout struct{ mock.Mock }

func (m *mockCheckout) ListPackages() []models.CoinPackage {
	r, _ := m.Called().Get(0).([]models.CoinPackage)
	return r
}

func (m *mockCheckout) CreateCheckout(ctx context.Context, userID, packageID string) (*models.CheckoutSession, error) {
	args := m.Called(ctx, userID, packageID)
	r, _ := args.Get(0).(*models.CheckoutSession)
	return r, args.Error(1)
}

func (m *mockCheckout) HandleWebhook(ctx context.Context, payload []byte, signature string) (*models.ResyncResult, error) {
	args := m.Called(ctx, payload, signature)
	r, _ := args.Get(0).(*models.ResyncResult)
	return r, args.Error(1)
}

type mockBalance struct{ mock.Mock }

func (m *mockBalance) Resync(ctx context.Context, userID string) (*models.ResyncResult, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).(*models.ResyncResult)
	return r, args.Error(1)
}

type mockAnalytics struct{ mock.Mock }

func (m *mockAnalytics) Metrics(ctx context.Context) (*analytics.Metrics, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*analytics.Metrics)
	return r, args.Error(1)
}

func (m *mockAnalytics) Duplicates(ctx context.Context) ([]analytics.DuplicateTitle, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]analytics.DuplicateTitle)
	return r, args.Error(1)
}

type mockMaintenance struct{ mock.Mock }

func (m *mockMaintenance) StandardizeGenres(ctx context.Context, dryRun bool) (*models.MaintenanceReport, error) {
	args := m.Called(ctx, dryRun)
	r, _ := args.Get(0).(*models.MaintenanceReport)
	return r, args.Error(1)
}

func (m *mockMaintenance) StandardizePrices(ctx context.Context, prices map[string]int, dryRun bool) (*models.MaintenanceReport, error) {
	args := m.Called(ctx, prices, dryRun)
	r, _ := args.Get(0).(*models.MaintenanceReport)
	return r, args.Error(1)
}

func (m *mockMaintenance) RemoveOrphanedTags(ctx context.Context, dryRun bool) (*models.MaintenanceReport, error) {
	args := m.Called(ctx, dryRun)
	r, _ := args.Get(0).(*models.MaintenanceReport)
	return r, args.Error(1)
}

func (m *mockMaintenance) CleanupDuplicates(ctx context.Context, dryRun bool) (*models.MaintenanceReport, error) {
	args := m.Called(ctx, dryRun)
	r, _ := args.Get(0).(*models.MaintenanceReport)
	return r, args.Error(1)
}

type mockGeneration struct{ mock.Mock }

func (m *mockGeneration) GenerateNext(ctx context.Context) (*models.GenerationResult, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*models.GenerationResult)
	return r, args.Error(1)
}

func (m *mockGeneration) GenerateByTitle(ctx context.Context, title string) (*models.GenerationResult, error) {
	args := m.Called(ctx, title)
	r, _ := args.Get(0).(*models.GenerationResult)
	return r, args.Error(1)
}

func (m *mockGeneration) EnqueueGeneration(ctx context.Context, requestedBy string, count int) ([]string, error) {
	args := m.Called(ctx, requestedBy, count)
	r, _ := args.Get(0).([]string)
	return r, args.Error(1)
}
