package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"firstlook/internal/interfaces"
	"firstlook/internal/models"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var _ interfaces.UserRepository = (*FirestoreUserRepository)(nil)

// FirestoreUserRepository stores users/{uid} profile documents.
type FirestoreUserRepository struct {
	client *firestore.Client
	logger *zap.Logger
	now    func() time.Time
}

func NewFirestoreUserRepository(client *firestore.Client, logger *zap.Logger) *FirestoreUserRepository {
	return &FirestoreUserRepository{
		client: client,
		logger: logger.Named("FirestoreUserRepo"),
		now:    time.Now,
	}
}

func (r *FirestoreUserRepository) doc(userID string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(userID)
}

func (r *FirestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, models.ErrUserNotFound
	}

	snap, err := r.doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user profile", zap.String("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return docToProfile(snap)
}

func (r *FirestoreUserRepository) CreateIfMissing(ctx context.Context, profile models.UserProfile) (*models.UserProfile, error) {
	if strings.TrimSpace(profile.UserID) == "" {
		return nil, fmt.Errorf("%w: empty user id", models.ErrInvalidInput)
	}
	ref := r.doc(profile.UserID)

	var stored *models.UserProfile
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err == nil && snap.Exists() {
			stored, err = docToProfile(snap)
			return err
		}
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		now := r.now().UTC()
		profile.CreatedAt = now
		profile.UpdatedAt = now
		if profile.UnlockedStories == nil {
			profile.UnlockedStories = []models.UnlockedStory{}
		}
		if profile.ReadStories == nil {
			profile.ReadStories = []string{}
		}
		if profile.FavoriteStories == nil {
			profile.FavoriteStories = []string{}
		}
		if profile.Preferences.Subgenres == nil {
			profile.Preferences.Subgenres = []models.Subgenre{}
		}
		stored = &profile
		return tx.Create(ref, profile)
	})
	if err != nil {
		r.logger.Error("Failed to create user profile", zap.String("userID", profile.UserID), zap.Error(err))
		return nil, fmt.Errorf("failed to create user %s: %w", profile.UserID, err)
	}
	return stored, nil
}

func (r *FirestoreUserRepository) SetCoins(ctx context.Context, userID string, coins int) error {
	return r.update(ctx, userID, "set coins", []firestore.Update{{Path: "coins", Value: coins}})
}

func (r *FirestoreUserRepository) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	return r.update(ctx, userID, "set stripe customer", []firestore.Update{{Path: "stripeCustomerId", Value: customerID}})
}

func (r *FirestoreUserRepository) SetPreferences(ctx context.Context, userID string, prefs models.Preferences) error {
	subgenres := make([]string, 0, len(prefs.Subgenres))
	for _, s := range prefs.Subgenres {
		subgenres = append(subgenres, string(s))
	}
	return r.update(ctx, userID, "set preferences", []firestore.Update{{Path: "preferences.subgenres", Value: subgenres}})
}

func (r *FirestoreUserRepository) SetFavorite(ctx context.Context, userID, storyID string, favorite bool) error {
	var value any = firestore.ArrayUnion(storyID)
	if !favorite {
		value = firestore.ArrayRemove(storyID)
	}
	return r.update(ctx, userID, "set favorite", []firestore.Update{{Path: "favoriteStories", Value: value}})
}

func (r *FirestoreUserRepository) MarkRead(ctx context.Context, userID, storyID string) error {
	return r.update(ctx, userID, "mark read", []firestore.Update{{Path: "readStories", Value: firestore.ArrayUnion(storyID)}})
}

// Unlock runs the balance check and the deduction in one transaction so two
// concurrent unlocks cannot spend the same coins.
func (r *FirestoreUserRepository) Unlock(ctx context.Context, userID, storyID string, cost int, at time.Time) (*models.UserProfile, error) {
	ref := r.doc(userID)
	logFields := []zap.Field{
		zap.String("userID", userID),
		zap.String("storyID", storyID),
		zap.Int("cost", cost),
	}

	var updated *models.UserProfile
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return models.ErrUserNotFound
			}
			return err
		}
		profile, err := docToProfile(snap)
		if err != nil {
			return err
		}
		if profile.HasUnlocked(storyID) {
			updated = profile
			return nil
		}
		if profile.Coins < cost {
			return models.ErrInsufficientCoins
		}

		entry := models.UnlockedStory{StoryID: storyID, UnlockedAt: at.UTC()}
		profile.Coins -= cost
		profile.UnlockedStories = append(profile.UnlockedStories, entry)
		profile.UpdatedAt = r.now().UTC()
		updated = profile

		return tx.Update(ref, []firestore.Update{
			{Path: "coins", Value: profile.Coins},
			{Path: "unlockedStories", Value: firestore.ArrayUnion(entry)},
			{Path: "updatedAt", Value: profile.UpdatedAt},
		})
	})
	if err != nil {
		if errors.Is(err, models.ErrInsufficientCoins) || errors.Is(err, models.ErrUserNotFound) {
			r.logger.Info("Unlock rejected", append(logFields, zap.Error(err))...)
			return nil, err
		}
		r.logger.Error("Unlock transaction failed", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to unlock story: %w", err)
	}
	return updated, nil
}

func (r *FirestoreUserRepository) update(ctx context.Context, userID, op string, updates []firestore.Update) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.ErrUserNotFound
	}
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: r.now().UTC()})

	if _, err := r.doc(userID).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return models.ErrUserNotFound
		}
		r.logger.Error("Failed to update user profile", zap.String("userID", userID), zap.String("op", op), zap.Error(err))
		return fmt.Errorf("failed to %s for user %s: %w", op, userID, err)
	}
	return nil
}

func docToProfile(doc *firestore.DocumentSnapshot) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", doc.Ref.ID, err)
	}
	if p.UserID == "" {
		p.UserID = doc.Ref.ID
	}
	return &p, nil
}
