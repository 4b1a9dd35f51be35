package service

import (
	"context"
	"sync"

	"firstlook/internal/models"
)

// memStoryRepo applies patches for real so tests can check idempotency.
type memStoryRepo struct {
	mu      sync.Mutex
	order   []string
	stories map[string]models.Story
	batches int
}

func newMemStoryRepo(stories ...models.Story) *memStoryRepo {
	r := &memStoryRepo{stories: make(map[string]models.Story)}
	for _, s := range stories {
		r.order = append(r.order, s.StoryID)
		r.stories[s.StoryID] = s
	}
	return r
}

func (r *memStoryRepo) ListAll(ctx context.Context) ([]models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Story, 0, len(r.order))
	for _, id := range r.order {
		if s, ok := r.stories[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memStoryRepo) ListPublished(ctx context.Context) ([]models.Story, error) {
	all, _ := r.ListAll(ctx)
	out := make([]models.Story, 0, len(all))
	for _, s := range all {
		if s.Status == models.StatusPublished {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memStoryRepo) GetByID(ctx context.Context, storyID string) (*models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stories[storyID]
	if !ok {
		return nil, models.ErrStoryNotFound
	}
	return &s, nil
}

func (r *memStoryRepo) GetByIDs(ctx context.Context, storyIDs []string) (map[string]models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]models.Story)
	for _, id := range storyIDs {
		if s, ok := r.stories[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (r *memStoryRepo) ListBySeries(ctx context.Context, seriesID string) ([]models.Story, error) {
	all, _ := r.ListAll(ctx)
	out := make([]models.Story, 0)
	for _, s := range all {
		if s.SeriesID != nil && *s.SeriesID == seriesID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memStoryRepo) CreateMany(ctx context.Context, stories []models.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range stories {
		r.order = append(r.order, s.StoryID)
		r.stories[s.StoryID] = s
	}
	return nil
}

func (r *memStoryRepo) ApplyPatches(ctx context.Context, patches []models.StoryPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches++
	for _, p := range patches {
		s, ok := r.stories[p.StoryID]
		if !ok {
			continue
		}
		if p.Delete {
			delete(r.stories, p.StoryID)
			continue
		}
		if p.Subgenre != nil {
			s.Subgenre = *p.Subgenre
		}
		if p.CoinCost != nil {
			s.CoinCost = *p.CoinCost
		}
		if p.IsPremium != nil {
			s.IsPremium = *p.IsPremium
		}
		if p.RemoveTags {
			s.HasLegacyTags = false
		}
		r.stories[p.StoryID] = s
	}
	return nil
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
