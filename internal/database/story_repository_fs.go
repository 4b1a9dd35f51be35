package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"firstlook/internal/interfaces"
	"firstlook/internal/models"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var _ interfaces.StoryRepository = (*FirestoreStoryRepository)(nil)

// FirestoreStoryRepository stores one document per chapter in "stories".
type FirestoreStoryRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

func NewFirestoreStoryRepository(client *firestore.Client, logger *zap.Logger) *FirestoreStoryRepository {
	return &FirestoreStoryRepository{
		client: client,
		logger: logger.Named("FirestoreStoryRepo"),
	}
}

func (r *FirestoreStoryRepository) col() *firestore.CollectionRef {
	return r.client.Collection(storiesCollection)
}

func (r *FirestoreStoryRepository) ListAll(ctx context.Context) ([]models.Story, error) {
	return r.collect(ctx, r.col().Query)
}

func (r *FirestoreStoryRepository) ListPublished(ctx context.Context) ([]models.Story, error) {
	return r.collect(ctx, r.col().Where("status", "==", string(models.StatusPublished)))
}

func (r *FirestoreStoryRepository) ListBySeries(ctx context.Context, seriesID string) ([]models.Story, error) {
	seriesID = strings.TrimSpace(seriesID)
	if seriesID == "" {
		return []models.Story{}, nil
	}
	return r.collect(ctx, r.col().Where("seriesId", "==", seriesID))
}

func (r *FirestoreStoryRepository) GetByID(ctx context.Context, storyID string) (*models.Story, error) {
	storyID = strings.TrimSpace(storyID)
	if storyID == "" {
		return nil, models.ErrStoryNotFound
	}

	snap, err := r.col().Doc(storyID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrStoryNotFound
		}
		r.logger.Error("Failed to get story", zap.String("storyID", storyID), zap.Error(err))
		return nil, fmt.Errorf("failed to get story %s: %w", storyID, err)
	}

	story, err := docToStory(snap)
	if err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *FirestoreStoryRepository) GetByIDs(ctx context.Context, storyIDs []string) (map[string]models.Story, error) {
	if len(storyIDs) > interfaces.MaxIDsPerQuery {
		return nil, fmt.Errorf("%w: at most %d ids per lookup, got %d", models.ErrInvalidInput, interfaces.MaxIDsPerQuery, len(storyIDs))
	}
	result := make(map[string]models.Story, len(storyIDs))
	if len(storyIDs) == 0 {
		return result, nil
	}

	refs := make([]*firestore.DocumentRef, 0, len(storyIDs))
	for _, id := range storyIDs {
		if id = strings.TrimSpace(id); id != "" {
			refs = append(refs, r.col().Doc(id))
		}
	}

	snaps, err := r.client.GetAll(ctx, refs)
	if err != nil {
		r.logger.Error("Failed to get stories by ids", zap.Int("count", len(refs)), zap.Error(err))
		return nil, fmt.Errorf("failed to get stories by ids: %w", err)
	}
	for _, snap := range snaps {
		if snap == nil || !snap.Exists() {
			continue
		}
		story, err := docToStory(snap)
		if err != nil {
			return nil, err
		}
		result[story.StoryID] = story
	}
	return result, nil
}

func (r *FirestoreStoryRepository) CreateMany(ctx context.Context, stories []models.Story) error {
	if len(stories) == 0 {
		return nil
	}
	if len(stories) > maxBatchWrites {
		return fmt.Errorf("%w: too many stories in one write (%d)", models.ErrInvalidInput, len(stories))
	}

	batch := r.client.Batch()
	for i := range stories {
		if stories[i].StoryID == "" {
			return fmt.Errorf("%w: story without id", models.ErrInvalidInput)
		}
		batch.Create(r.col().Doc(stories[i].StoryID), stories[i])
	}
	if _, err := batch.Commit(ctx); err != nil {
		r.logger.Error("Failed to create stories", zap.Int("count", len(stories)), zap.Error(err))
		return fmt.Errorf("failed to create stories: %w", err)
	}

	r.logger.Info("Stories created", zap.Int("count", len(stories)))
	return nil
}

// ApplyPatches writes all patches through WriteBatch, committing every
// maxBatchWrites writes. Each commit is atomic on its own.
func (r *FirestoreStoryRepository) ApplyPatches(ctx context.Context, patches []models.StoryPatch) error {
	batch := r.client.Batch()
	pending := 0
	committed := 0

	commit := func() error {
		if pending == 0 {
			return nil
		}
		if _, err := batch.Commit(ctx); err != nil {
			r.logger.Error("Failed to commit story batch",
				zap.Int("pending", pending),
				zap.Int("committed", committed),
				zap.Error(err),
			)
			return fmt.Errorf("failed to commit story batch after %d writes: %w", committed, err)
		}
		committed += pending
		pending = 0
		batch = r.client.Batch()
		return nil
	}

	for _, p := range patches {
		if p.IsEmpty() || p.StoryID == "" {
			continue
		}
		ref := r.col().Doc(p.StoryID)
		if p.Delete {
			batch.Delete(ref)
		} else {
			batch.Update(ref, patchUpdates(p))
		}
		pending++
		if pending == maxBatchWrites {
			if err := commit(); err != nil {
				return err
			}
		}
	}
	if err := commit(); err != nil {
		return err
	}

	r.logger.Debug("Story patches applied", zap.Int("writes", committed))
	return nil
}

func (r *FirestoreStoryRepository) collect(ctx context.Context, q firestore.Query) ([]models.Story, error) {
	it := q.Documents(ctx)
	defer it.Stop()

	stories := make([]models.Story, 0)
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			r.logger.Error("Failed to iterate stories", zap.Error(err))
			return nil, fmt.Errorf("failed to list stories: %w", err)
		}
		story, err := docToStory(doc)
		if err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	return stories, nil
}

func patchUpdates(p models.StoryPatch) []firestore.Update {
	var updates []firestore.Update
	if p.Subgenre != nil {
		updates = append(updates, firestore.Update{Path: "subgenre", Value: string(*p.Subgenre)})
	}
	if p.CoinCost != nil {
		updates = append(updates, firestore.Update{Path: "coinCost", Value: *p.CoinCost})
	}
	if p.IsPremium != nil {
		updates = append(updates, firestore.Update{Path: "isPremium", Value: *p.IsPremium})
	}
	if p.RemoveTags {
		updates = append(updates, firestore.Update{Path: "tags", Value: firestore.Delete})
	}
	return updates
}

func docToStory(doc *firestore.DocumentSnapshot) (models.Story, error) {
	var s models.Story
	if err := doc.DataTo(&s); err != nil {
		return models.Story{}, fmt.Errorf("failed to decode story %s: %w", doc.Ref.ID, err)
	}
	if s.StoryID == "" {
		s.StoryID = doc.Ref.ID
	}
	_, s.HasLegacyTags = doc.Data()["tags"]
	return s, nil
}
