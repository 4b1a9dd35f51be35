package mocks

import (
	"context"
	"time"

	"firstlook/internal/interfaces"
	"firstlook/internal/models"

	"github.com/stretchr/testify/mock"
)

// UserRepository is a mock type for the UserRepository type
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) GetByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	args := m.Called(ctx, userID)
	var r0 *models.UserProfile
	if v := args.Get(0); v != nil {
		r0 = v.(*models.UserProfile)
	}
	return r0, args.Error(1)
}

func (m *UserRepository) CreateIfMissing(ctx context.Context, profile models.UserProfile) (*models.UserProfile, error) {
	args := m.Called(ctx, profile)
	var r0 *models.UserProfile
	if v := args.Get(0); v != nil {
		r0 = v.(*models.UserProfile)
	}
	return r0, args.Error(1)
}

func (m *UserRepository) SetCoins(ctx context.Context, userID string, coins int) error {
	args := m.Called(ctx, userID, coins)
	return args.Error(0)
}

func (m *UserRepository) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	args := m.Called(ctx, userID, customerID)
	return args.Error(0)
}

func (m *UserRepository) Unlock(ctx context.Context, userID, storyID string, cost int, at time.Time) (*models.UserProfile, error) {
	args := m.Called(ctx, userID, storyID, cost, at)
	var r0 *models.UserProfile
	if v := args.Get(0); v != nil {
		r0 = v.(*models.UserProfile)
	}
	return r0, args.Error(1)
}

func (m *UserRepository) SetFavorite(ctx context.Context, userID, storyID string, favorite bool) error {
	args := m.Called(ctx, userID, storyID, favorite)
	return args.Error(0)
}

func (m *UserRepository) MarkRead(ctx context.Context, userID, storyID string) error {
	args := m.Called(ctx, userID, storyID)
	return args.Error(0)
}

func (m *UserRepository) SetPreferences(ctx context.Context, userID string, prefs models.Preferences) error {
	args := m.Called(ctx, userID, prefs)
	return args.Error(0)
}

var _ interfaces.UserRepository = (*UserRepository)(nil)
