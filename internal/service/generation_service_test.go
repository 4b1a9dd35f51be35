package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"firstlook/internal/ai"
	"firstlook/internal/interfaces"
	"firstlook/internal/interfaces/mocks"
	"firstlook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 2, 14, 9, 0, 0, 0, time.UTC)

func newTestGenerationService(t *testing.T, repo *memStoryRepo, text *mocks.TextGenerator, images ai.ImageGenerator, covers interfaces.CoverStore) *GenerationService {
	t.Helper()
	svc := NewGenerationService(repo, testSeeds(t), text, images, covers, nil, nil, GenerationConfig{Author: "FirstLook"}, zap.NewNop())
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func draftJSON(title, content string, extra string) string {
	return fmt.Sprintf(`{"title":%q,"content":%q,"synopsis":"A synopsis.","coverImagePrompt":"a lighthouse at dusk"%s}`, title, content, extra)
}

func expectDraft(text *mocks.TextGenerator, raw string) {
	text.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(raw, ai.UsageInfo{}, nil).Once()
}

func TestGenerationService_Standalone(t *testing.T) {
	ctx := context.Background()
	repo := newMemStoryRepo()
	text := new(mocks.TextGenerator)
	images := new(mocks.ImageGenerator)

	expectDraft(text, "```json\n"+draftJSON("Harbour Lights", "<p>one two three four five six seven eight nine ten</p><script>alert(1)</script>", "")+"\n```")
	images.On("GenerateImage", mock.Anything, "a lighthouse at dusk").Return(nil, errors.New("content policy")).Once()

	svc := newTestGenerationService(t, repo, text, images, new(mocks.CoverStore))
	result, err := svc.GenerateByTitle(ctx, "harbour lights")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.StoryIDs, 1)

	story, err := repo.GetByID(ctx, result.StoryIDs[0])
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, story.Status)
	assert.Equal(t, 11, story.WordCount)
	assert.NotContains(t, story.Content, "script")
	assert.Equal(t, 40, story.CoinCost)
	assert.True(t, story.IsPremium)
	assert.Empty(t, story.CoverImageURL)
	assert.Equal(t, models.SubgenreSmallTown, story.Subgenre)
	assert.Equal(t, "Harbour Lights", story.SeedTitleIdea)
	assert.Equal(t, "FirstLook", story.Author)
	assert.Equal(t, fixedNow, story.PublishedAt)
	assert.False(t, story.IsSeries())

	text.AssertExpectations(t)
	images.AssertExpectations(t)
}

func TestGenerationService_Series(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes every part with shared cover", func(t *testing.T) {
		repo := newMemStoryRepo()
		text := new(mocks.TextGenerator)
		images := new(mocks.ImageGenerator)
		covers := new(mocks.CoverStore)

		expectDraft(text, draftJSON("Moonrise", "<p>first</p>", `,"coinCost":99,"isPremium":true,"wordCount":2500`))
		expectDraft(text, draftJSON("Eclipse", "<p>second</p>", `,"coinCost":30,"isPremium":true`))
		expectDraft(text, draftJSON("Dawn", "<p>third chapter</p>", ""))
		images.On("GenerateImage", mock.Anything, "a lighthouse at dusk").Return([]byte("png"), nil).Once()
		covers.On("UploadCover", mock.Anything, "covers/id-1.png", []byte("png"), "image/png").Return("https://cdn.example/covers/id-1.png", nil).Once()

		svc := newTestGenerationService(t, repo, text, images, covers)
		result, err := svc.GenerateByTitle(ctx, "Moonlit Vows")
		require.NoError(t, err)
		require.True(t, result.Success)
		assert.Equal(t, "id-1", result.SeriesID)
		require.Len(t, result.StoryIDs, 3)

		parts, err := repo.ListBySeries(ctx, "id-1")
		require.NoError(t, err)
		require.Len(t, parts, 3)

		assert.Equal(t, 1, *parts[0].PartNumber)
		assert.Equal(t, 0, parts[0].CoinCost)
		assert.False(t, parts[0].IsPremium)
		assert.Equal(t, 2500, parts[0].WordCount)

		assert.Equal(t, 30, parts[1].CoinCost)
		assert.True(t, parts[1].IsPremium)
		assert.Equal(t, 1, parts[1].WordCount)

		assert.Equal(t, 50, parts[2].CoinCost)
		assert.Equal(t, 2, parts[2].WordCount)

		for _, p := range parts {
			assert.Equal(t, "Moonlit Vows", *p.SeriesTitle)
			assert.Equal(t, 3, *p.TotalPartsInSeries)
			assert.Equal(t, "https://cdn.example/covers/id-1.png", p.CoverImageURL)
			assert.Equal(t, models.SubgenreParanormal, p.Subgenre)
		}
		text.AssertExpectations(t)
		covers.AssertExpectations(t)
	})

	t.Run("a bad part records one failed document", func(t *testing.T) {
		repo := newMemStoryRepo()
		text := new(mocks.TextGenerator)

		expectDraft(text, draftJSON("Moonrise", "<p>first</p>", ""))
		expectDraft(text, "I cannot write that.")

		svc := newTestGenerationService(t, repo, text, nil, nil)
		result, err := svc.GenerateByTitle(ctx, "Moonlit Vows")
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "part 2 of 3")

		all, _ := repo.ListAll(ctx)
		require.Len(t, all, 1)
		assert.Equal(t, models.StatusFailed, all[0].Status)
		assert.False(t, all[0].IsSeries())
		assert.Equal(t, "Moonlit Vows", all[0].SeedTitleIdea)
	})
}

func TestGenerationService_GenerateNext(t *testing.T) {
	ctx := context.Background()

	t.Run("skips seeds with published stories only", func(t *testing.T) {
		used := published("old", "Moonlit Vows", models.SubgenreParanormal, fixedNow)
		used.SeedTitleIdea = "moonlit vows"
		failed := published("f", "Harbour Lights", models.SubgenreSmallTown, fixedNow)
		failed.SeedTitleIdea = "Harbour Lights"
		failed.Status = models.StatusFailed
		repo := newMemStoryRepo(used, failed)

		text := new(mocks.TextGenerator)
		expectDraft(text, draftJSON("Harbour Lights", "<p>again</p>", ""))

		svc := newTestGenerationService(t, repo, text, nil, nil)
		result, err := svc.GenerateNext(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Harbour Lights", result.SeedTitle)
	})

	t.Run("no unused seeds", func(t *testing.T) {
		var stories []models.Story
		for i, title := range []string{"Moonlit Vows", "Harbour Lights", "Overtime"} {
			s := published(fmt.Sprintf("s%d", i), title, models.SubgenreRoyal, fixedNow)
			s.SeedTitleIdea = title
			stories = append(stories, s)
		}
		svc := newTestGenerationService(t, newMemStoryRepo(stories...), new(mocks.TextGenerator), nil, nil)
		_, err := svc.GenerateNext(ctx)
		assert.ErrorIs(t, err, models.ErrNoUnusedSeeds)
	})

	t.Run("unknown title", func(t *testing.T) {
		svc := newTestGenerationService(t, newMemStoryRepo(), new(mocks.TextGenerator), nil, nil)
		_, err := svc.GenerateByTitle(ctx, "Not A Seed")
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})
}

func TestGenerationService_Enqueue(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes one task per count", func(t *testing.T) {
		publisher := new(mocks.GenerationTaskPublisher)
		publisher.On("PublishGenerationTask", mock.Anything, mock.MatchedBy(func(p models.GenerationTaskPayload) bool {
			return p.RequestedBy == "admin-1" && p.TaskID != ""
		})).Return(nil).Times(3)

		svc := NewGenerationService(newMemStoryRepo(), testSeeds(t), new(mocks.TextGenerator), nil, nil, publisher, nil, GenerationConfig{}, zap.NewNop())
		ids, err := svc.EnqueueGeneration(ctx, "admin-1", 3)
		require.NoError(t, err)
		assert.Len(t, ids, 3)
		publisher.AssertExpectations(t)
	})

	t.Run("count out of range", func(t *testing.T) {
		svc := NewGenerationService(newMemStoryRepo(), testSeeds(t), new(mocks.TextGenerator), nil, nil, new(mocks.GenerationTaskPublisher), nil, GenerationConfig{}, zap.NewNop())
		_, err := svc.EnqueueGeneration(ctx, "admin-1", 0)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
		_, err = svc.EnqueueGeneration(ctx, "admin-1", maxEnqueueCount+1)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})

	t.Run("no queue configured", func(t *testing.T) {
		svc := NewGenerationService(newMemStoryRepo(), testSeeds(t), new(mocks.TextGenerator), nil, nil, nil, nil, GenerationConfig{}, zap.NewNop())
		_, err := svc.EnqueueGeneration(ctx, "admin-1", 1)
		assert.ErrorIs(t, err, models.ErrExternalService)
	})
}

func TestGenerationService_HandleGenerationTask(t *testing.T) {
	ctx := context.Background()
	repo := newMemStoryRepo()
	text := new(mocks.TextGenerator)
	text.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", ai.UsageInfo{}, fmt.Errorf("%w: 503", ai.ErrGenerationFailed)).Once()

	svc := newTestGenerationService(t, repo, text, nil, nil)
	err := svc.HandleGenerationTask(ctx, models.GenerationTaskPayload{TaskID: "t1", SeedTitle: "Overtime"})
	require.NoError(t, err)

	all, _ := repo.ListAll(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, models.StatusFailed, all[0].Status)
	assert.Contains(t, all[0].ErrorMessage, "503")
}
