package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"firstlook/internal/interfaces"
	"firstlook/internal/models"
	"firstlook/internal/series"

	"go.uber.org/zap"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// StoryView is a chapter as returned to a reader. Locked premium chapters
// carry only their preview.
type StoryView struct {
	models.Story
	Locked bool `json:"locked"`
}

// SeriesView is the reader view of a whole series.
type SeriesView struct {
	SeriesID    string      `json:"seriesId"`
	SeriesTitle string      `json:"seriesTitle"`
	Chapters    []StoryView `json:"chapters"`
}

// StoryPage is one page of the story listing.
type StoryPage struct {
	Stories []models.Story `json:"stories"`
	Total   int            `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

// UnlockResult reports the outcome of UnlockStory.
type UnlockResult struct {
	StoryID      string `json:"storyId"`
	Charged      int    `json:"charged"`
	Coins        int    `json:"coins"`
	AlreadyOwned bool   `json:"alreadyOwned"`
}

// LibraryService covers the reader-facing profile and catalogue operations.
type LibraryService struct {
	users   interfaces.UserRepository
	stories interfaces.StoryRepository
	logger  *zap.Logger
	now     func() time.Time
}

func NewLibraryService(users interfaces.UserRepository, stories interfaces.StoryRepository, logger *zap.Logger) *LibraryService {
	return &LibraryService{
		users:   users,
		stories: stories,
		logger:  logger.Named("LibraryService"),
		now:     time.Now,
	}
}

// EnsureProfile creates the profile on first sign-in and returns it.
func (s *LibraryService) EnsureProfile(ctx context.Context, userID, email, displayName string) (*models.UserProfile, error) {
	profile, err := s.users.GetByID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return nil, err
	}

	profile, err = s.users.CreateIfMissing(ctx, models.UserProfile{
		UserID:      userID,
		Email:       email,
		DisplayName: displayName,
		Coins:       0,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("User profile created", zap.String("userID", userID))
	return profile, nil
}

func (s *LibraryService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	return s.users.GetByID(ctx, userID)
}

// UnlockStory charges for a paid chapter. Free and already owned chapters
// succeed without a charge.
func (s *LibraryService) UnlockStory(ctx context.Context, userID, storyID string) (*UnlockResult, error) {
	story, err := s.publishedStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	profile, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &UnlockResult{StoryID: storyID, Coins: profile.Coins}
	if !story.IsPaid() {
		unlocksTotal.WithLabelValues("free").Inc()
		return result, nil
	}
	if profile.HasUnlocked(storyID) {
		result.AlreadyOwned = true
		unlocksTotal.WithLabelValues("owned").Inc()
		return result, nil
	}
	if profile.Coins < story.CoinCost {
		unlocksTotal.WithLabelValues("insufficient").Inc()
		return nil, fmt.Errorf("%w: need %d, have %d", models.ErrInsufficientCoins, story.CoinCost, profile.Coins)
	}

	updated, err := s.users.Unlock(ctx, userID, storyID, story.CoinCost, s.now())
	if err != nil {
		if errors.Is(err, models.ErrInsufficientCoins) {
			unlocksTotal.WithLabelValues("insufficient").Inc()
		} else {
			unlocksTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	result.Charged = profile.Coins - updated.Coins
	result.Coins = updated.Coins
	result.AlreadyOwned = result.Charged == 0
	unlocksTotal.WithLabelValues("charged").Inc()
	s.logger.Info("Story unlocked",
		zap.String("userID", userID),
		zap.String("storyID", storyID),
		zap.Int("charged", result.Charged),
		zap.Int("coins", result.Coins),
	)
	return result, nil
}

// ToggleFavorite flips the favorite flag and returns the new state.
func (s *LibraryService) ToggleFavorite(ctx context.Context, userID, storyID string) (bool, error) {
	if _, err := s.publishedStory(ctx, storyID); err != nil {
		return false, err
	}
	profile, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	favorite := !contains(profile.FavoriteStories, storyID)
	if err := s.users.SetFavorite(ctx, userID, storyID, favorite); err != nil {
		return false, err
	}
	return favorite, nil
}

func (s *LibraryService) MarkRead(ctx context.Context, userID, storyID string) error {
	if _, err := s.publishedStory(ctx, storyID); err != nil {
		return err
	}
	return s.users.MarkRead(ctx, userID, storyID)
}

// UpdatePreferences replaces the preferred subgenres; duplicates are dropped.
func (s *LibraryService) UpdatePreferences(ctx context.Context, userID string, subgenres []models.Subgenre) (*models.Preferences, error) {
	prefs := models.Preferences{Subgenres: make([]models.Subgenre, 0, len(subgenres))}
	seen := make(map[models.Subgenre]struct{}, len(subgenres))
	for _, g := range subgenres {
		if !g.IsValid() {
			return nil, fmt.Errorf("%w: unknown subgenre %q", models.ErrInvalidInput, g)
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		prefs.Subgenres = append(prefs.Subgenres, g)
	}
	if err := s.users.SetPreferences(ctx, userID, prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// ListStories returns group representatives newest first. Content is not
// included in listings.
func (s *LibraryService) ListStories(ctx context.Context, filter models.StoryFilter) (*StoryPage, error) {
	if filter.Subgenre != "" && !filter.Subgenre.IsValid() {
		return nil, fmt.Errorf("%w: unknown subgenre %q", models.ErrInvalidInput, filter.Subgenre)
	}
	if filter.Offset < 0 {
		return nil, fmt.Errorf("%w: negative offset", models.ErrInvalidInput)
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultListLimit
	case filter.Limit > maxListLimit:
		filter.Limit = maxListLimit
	}

	stories, err := s.stories.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stories: %w", err)
	}

	reps := series.Representatives(stories)
	filtered := make([]models.Story, 0, len(reps))
	for _, r := range reps {
		if filter.Subgenre != "" && r.Subgenre != filter.Subgenre {
			continue
		}
		r.Content = ""
		filtered = append(filtered, r)
	}

	page := &StoryPage{Total: len(filtered), Limit: filter.Limit, Offset: filter.Offset, Stories: []models.Story{}}
	if filter.Offset < len(filtered) {
		end := filter.Offset + filter.Limit
		if end > len(filtered) {
			end = len(filtered)
		}
		page.Stories = filtered[filter.Offset:end]
	}
	return page, nil
}

// GetStory returns one chapter, withholding paid content the user has not unlocked.
func (s *LibraryService) GetStory(ctx context.Context, userID, storyID string) (*StoryView, error) {
	story, err := s.publishedStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	profile, err := s.users.GetByID(ctx, userID)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		return nil, err
	}
	return s.view(*story, profile), nil
}

// GetSeries returns every published chapter of a series ordered by part.
func (s *LibraryService) GetSeries(ctx context.Context, userID, seriesID string) (*SeriesView, error) {
	chapters, err := s.stories.ListBySeries(ctx, seriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to load series: %w", err)
	}
	published := make([]models.Story, 0, len(chapters))
	for _, ch := range chapters {
		if ch.Status == models.StatusPublished {
			published = append(published, ch)
		}
	}
	if len(published) == 0 {
		return nil, fmt.Errorf("%w: series %s", models.ErrNotFound, seriesID)
	}

	profile, err := s.users.GetByID(ctx, userID)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		return nil, err
	}

	groups := series.GroupStories(published)
	view := &SeriesView{SeriesID: seriesID, SeriesTitle: groups[0].Representative().LogicalTitle()}
	for _, ch := range groups[0].SortedParts() {
		view.Chapters = append(view.Chapters, *s.view(ch, profile))
	}
	return view, nil
}

func (s *LibraryService) publishedStory(ctx context.Context, storyID string) (*models.Story, error) {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story.Status != models.StatusPublished {
		return nil, models.ErrStoryNotFound
	}
	return story, nil
}

func (s *LibraryService) view(story models.Story, profile *models.UserProfile) *StoryView {
	locked := story.IsPaid() && (profile == nil || !profile.HasUnlocked(story.StoryID))
	if locked {
		story.Content = ""
	}
	return &StoryView{Story: story, Locked: locked}
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
