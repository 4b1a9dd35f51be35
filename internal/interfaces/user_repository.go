package interfaces

import (
	"context"
	"time"

	"firstlook/internal/models"
)

// UserRepository is the users/{uid} profile store.
//
//go:generate mockery --name UserRepository --output ./mocks --outpkg mocks --case=underscore
type UserRepository interface {
	// GetByID returns models.ErrUserNotFound when the profile does not exist.
	GetByID(ctx context.Context, userID string) (*models.UserProfile, error)

	// CreateIfMissing stores the profile unless one already exists and
	// returns whichever profile is stored afterwards.
	CreateIfMissing(ctx context.Context, profile models.UserProfile) (*models.UserProfile, error)

	// SetCoins overwrites the coin balance.
	SetCoins(ctx context.Context, userID string, coins int) error

	SetStripeCustomerID(ctx context.Context, userID, customerID string) error

	// Unlock atomically checks the balance, deducts cost and appends the
	// unlock record. Already unlocked stories are returned unchanged.
	// Returns models.ErrInsufficientCoins when the balance is too low.
	Unlock(ctx context.Context, userID, storyID string, cost int, at time.Time) (*models.UserProfile, error)

	SetFavorite(ctx context.Context, userID, storyID string, favorite bool) error
	MarkRead(ctx context.Context, userID, storyID string) error
	SetPreferences(ctx context.Context, userID string, prefs models.Preferences) error
}
