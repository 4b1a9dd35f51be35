package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"firstlook/internal/ai"
	"firstlook/internal/analytics"
	"firstlook/internal/interfaces"
	"firstlook/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	previewWords      = 60
	maxEnqueueCount   = 50
	generationKindOne = "standalone"
	generationKindSeq = "series"
)

// SeedCatalog is the ordered seed list plus title lookup.
type SeedCatalog interface {
	SeedLookup
	AllSeeds() []models.Seed
}

// GenerationConfig tunes LLM calls made by the generator.
type GenerationConfig struct {
	Author      string
	Temperature float64
	MaxTokens   int
}

// GenerationService turns seeds into stored stories.
type GenerationService struct {
	stories   interfaces.StoryRepository
	seeds     SeedCatalog
	text      ai.TextGenerator
	images    ai.ImageGenerator
	covers    interfaces.CoverStore
	publisher interfaces.GenerationTaskPublisher
	cache     interfaces.SnapshotCache
	cfg       GenerationConfig
	logger    *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewGenerationService accepts nil images, covers, publisher and cache.
func NewGenerationService(
	stories interfaces.StoryRepository,
	seeds SeedCatalog,
	text ai.TextGenerator,
	images ai.ImageGenerator,
	covers interfaces.CoverStore,
	publisher interfaces.GenerationTaskPublisher,
	cache interfaces.SnapshotCache,
	cfg GenerationConfig,
	logger *zap.Logger,
) *GenerationService {
	return &GenerationService{
		stories:   stories,
		seeds:     seeds,
		text:      text,
		images:    images,
		covers:    covers,
		publisher: publisher,
		cache:     cache,
		cfg:       cfg,
		logger:    logger.Named("GenerationService"),
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// GenerateNext generates the first seed that no published story was made from.
func (s *GenerationService) GenerateNext(ctx context.Context) (*models.GenerationResult, error) {
	seed, err := s.nextUnusedSeed(ctx)
	if err != nil {
		return nil, err
	}
	return s.GenerateFromSeed(ctx, seed)
}

// GenerateByTitle generates a specific seed.
func (s *GenerationService) GenerateByTitle(ctx context.Context, title string) (*models.GenerationResult, error) {
	seed, ok := s.seeds.SeedByTitle(title)
	if !ok {
		return nil, fmt.Errorf("%w: no seed titled %q", models.ErrInvalidInput, title)
	}
	return s.GenerateFromSeed(ctx, seed)
}

// GenerateFromSeed writes a published story or series, or a failed document
// when the LLM output is unusable. Only storage failures are returned as errors.
func (s *GenerationService) GenerateFromSeed(ctx context.Context, seed models.Seed) (*models.GenerationResult, error) {
	kind := generationKindOne
	if seed.IsSeries() {
		kind = generationKindSeq
	}
	logFields := []zap.Field{
		zap.String("seed", seed.TitleIdea),
		zap.String("kind", kind),
		zap.Int("parts", seed.Parts),
	}
	s.logger.Info("Generating from seed", logFields...)

	var (
		stories []models.Story
		genErr  error
	)
	if seed.IsSeries() {
		stories, genErr = s.generateSeries(ctx, seed)
	} else {
		var story *models.Story
		story, genErr = s.generateStandalone(ctx, seed)
		if story != nil {
			stories = []models.Story{*story}
		}
	}

	if genErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		generationsTotal.WithLabelValues(kind, "failed").Inc()
		s.logger.Warn("Generation failed, recording failed document", append(logFields, zap.Error(genErr))...)
		return s.recordFailure(ctx, seed, genErr)
	}

	if err := s.stories.CreateMany(ctx, stories); err != nil {
		generationsTotal.WithLabelValues(kind, "error").Inc()
		return nil, fmt.Errorf("failed to store generated stories: %w", err)
	}
	invalidateSnapshots(ctx, s.cache, s.logger)
	generationsTotal.WithLabelValues(kind, "published").Inc()

	result := &models.GenerationResult{Success: true, SeedTitle: seed.TitleIdea}
	for _, st := range stories {
		result.StoryIDs = append(result.StoryIDs, st.StoryID)
	}
	if seed.IsSeries() && stories[0].SeriesID != nil {
		result.SeriesID = *stories[0].SeriesID
	}
	s.logger.Info("Generation published", append(logFields, zap.Strings("storyIDs", result.StoryIDs))...)
	return result, nil
}

// EnqueueGeneration queues count GenerateNext tasks for the worker.
func (s *GenerationService) EnqueueGeneration(ctx context.Context, requestedBy string, count int) ([]string, error) {
	if count < 1 || count > maxEnqueueCount {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", models.ErrInvalidInput, maxEnqueueCount)
	}
	if s.publisher == nil {
		return nil, fmt.Errorf("%w: generation queue is not configured", models.ErrExternalService)
	}

	taskIDs := make([]string, 0, count)
	for i := 0; i < count; i++ {
		payload := models.GenerationTaskPayload{TaskID: s.newID(), RequestedBy: requestedBy}
		if err := s.publisher.PublishGenerationTask(ctx, payload); err != nil {
			return taskIDs, fmt.Errorf("failed to enqueue task %d of %d: %w", i+1, count, err)
		}
		taskIDs = append(taskIDs, payload.TaskID)
	}
	s.logger.Info("Generation tasks enqueued", zap.String("requestedBy", requestedBy), zap.Int("count", count))
	return taskIDs, nil
}

// HandleGenerationTask runs one queued task. A failed generation is already
// recorded as a document and does not fail the task.
func (s *GenerationService) HandleGenerationTask(ctx context.Context, payload models.GenerationTaskPayload) error {
	var (
		result *models.GenerationResult
		err    error
	)
	if payload.SeedTitle != "" {
		result, err = s.GenerateByTitle(ctx, payload.SeedTitle)
	} else {
		result, err = s.GenerateNext(ctx)
	}
	if err != nil {
		return err
	}
	if !result.Success {
		s.logger.Warn("Queued generation produced a failed document",
			zap.String("taskID", payload.TaskID),
			zap.String("seed", result.SeedTitle),
			zap.String("error", result.Error),
		)
	}
	return nil
}

func (s *GenerationService) nextUnusedSeed(ctx context.Context) (models.Seed, error) {
	published, err := s.stories.ListPublished(ctx)
	if err != nil {
		return models.Seed{}, fmt.Errorf("failed to load stories: %w", err)
	}
	used := make(map[string]struct{}, len(published))
	for _, st := range published {
		if st.SeedTitleIdea != "" {
			used[analytics.NormalizeTitle(st.SeedTitleIdea)] = struct{}{}
		}
	}
	for _, seed := range s.seeds.AllSeeds() {
		if _, ok := used[analytics.NormalizeTitle(seed.TitleIdea)]; !ok {
			return seed, nil
		}
	}
	return models.Seed{}, models.ErrNoUnusedSeeds
}

func (s *GenerationService) generateStandalone(ctx context.Context, seed models.Seed) (*models.Story, error) {
	prompt, err := ai.StandalonePrompt(seed)
	if err != nil {
		return nil, err
	}
	draft, err := s.draft(ctx, prompt)
	if err != nil {
		return nil, err
	}

	story := s.storyFromDraft(seed, draft)
	story.WordCount = ai.EstimateWordCount(story.Content)
	story.CoinCost, story.IsPremium = pricing(draft, seed.CoinCost)
	story.CoverImageURL = s.cover(ctx, story.CoverImagePrompt, story.StoryID)
	return &story, nil
}

func (s *GenerationService) generateSeries(ctx context.Context, seed models.Seed) ([]models.Story, error) {
	seriesID := s.newID()
	seriesTitle := seed.TitleIdea
	total := seed.Parts

	chapters := make([]models.Story, 0, total)
	synopses := make([]string, 0, total)
	for part := 1; part <= total; part++ {
		prompt, err := ai.ChapterPrompt(ai.ChapterRequest{
			Seed:             seed,
			SeriesTitle:      seriesTitle,
			PartNumber:       part,
			PreviousSynopses: synopses,
		})
		if err != nil {
			return nil, err
		}
		draft, err := s.draft(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("part %d of %d: %w", part, total, err)
		}

		ch := s.storyFromDraft(seed, draft)
		partNumber, totalParts := part, total
		ch.SeriesID = &seriesID
		ch.SeriesTitle = &seriesTitle
		ch.PartNumber = &partNumber
		ch.TotalPartsInSeries = &totalParts

		ch.WordCount = draft.WordCount
		if ch.WordCount <= 0 {
			ch.WordCount = ai.CountWords(ch.Content)
		}
		if part == 1 {
			ch.CoinCost, ch.IsPremium = 0, false
		} else {
			ch.CoinCost, ch.IsPremium = pricing(draft, seed.CoinCost)
		}

		chapters = append(chapters, ch)
		synopses = append(synopses, ch.Synopsis)
	}

	coverURL := s.cover(ctx, chapters[0].CoverImagePrompt, seriesID)
	for i := range chapters {
		chapters[i].CoverImageURL = coverURL
		chapters[i].CoverImagePrompt = chapters[0].CoverImagePrompt
	}
	return chapters, nil
}

func (s *GenerationService) draft(ctx context.Context, prompt string) (*ai.StoryDraft, error) {
	params := ai.GenerationParams{JSONMode: true}
	if s.cfg.Temperature > 0 {
		t := s.cfg.Temperature
		params.Temperature = &t
	}
	if s.cfg.MaxTokens > 0 {
		m := s.cfg.MaxTokens
		params.MaxTokens = &m
	}

	raw, _, err := s.text.GenerateText(ctx, ai.SystemPrompt(), prompt, params)
	if err != nil {
		return nil, err
	}
	return ai.ParseStoryDraft(raw)
}

func (s *GenerationService) storyFromDraft(seed models.Seed, draft *ai.StoryDraft) models.Story {
	content := ai.SanitizeHTML(draft.Content)
	preview := ai.PlainText(draft.PreviewText)
	if preview == "" {
		preview = ai.PreviewFrom(content, previewWords)
	}
	coverPrompt := strings.TrimSpace(draft.CoverImagePrompt)
	if coverPrompt == "" {
		coverPrompt = seed.CoverPrompt
	}
	return models.Story{
		StoryID:          s.newID(),
		Title:            strings.TrimSpace(draft.Title),
		Content:          content,
		Synopsis:         ai.PlainText(draft.Synopsis),
		PreviewText:      preview,
		Subgenre:         seed.Subgenre,
		Author:           s.cfg.Author,
		CoverImagePrompt: coverPrompt,
		Status:           models.StatusPublished,
		PublishedAt:      s.now().UTC(),
		SeedTitleIdea:    seed.TitleIdea,
	}
}

// cover returns an empty URL when covers are disabled or fail.
func (s *GenerationService) cover(ctx context.Context, prompt, key string) string {
	if s.images == nil || s.covers == nil || prompt == "" {
		return ""
	}
	data, err := s.images.GenerateImage(ctx, prompt)
	if err != nil {
		s.logger.Warn("Cover generation failed, storing without cover", zap.String("key", key), zap.Error(err))
		return ""
	}
	url, err := s.covers.UploadCover(ctx, "covers/"+key+".png", data, "image/png")
	if err != nil {
		s.logger.Warn("Cover upload failed, storing without cover", zap.String("key", key), zap.Error(err))
		return ""
	}
	return url
}

func (s *GenerationService) recordFailure(ctx context.Context, seed models.Seed, genErr error) (*models.GenerationResult, error) {
	failed := models.Story{
		StoryID:       s.newID(),
		Title:         seed.TitleIdea,
		Subgenre:      seed.Subgenre,
		Author:        s.cfg.Author,
		Status:        models.StatusFailed,
		ErrorMessage:  genErr.Error(),
		PublishedAt:   s.now().UTC(),
		SeedTitleIdea: seed.TitleIdea,
	}
	if err := s.stories.CreateMany(ctx, []models.Story{failed}); err != nil {
		return nil, fmt.Errorf("failed to record failed generation: %w", errors.Join(err, genErr))
	}
	return &models.GenerationResult{
		Success:   false,
		SeedTitle: seed.TitleIdea,
		StoryIDs:  []string{failed.StoryID},
		Error:     genErr.Error(),
	}, nil
}

// pricing keeps coinCost == 0 exactly when the chapter is free.
func pricing(draft *ai.StoryDraft, fallback int) (int, bool) {
	if draft.IsPremium != nil && !*draft.IsPremium {
		return 0, false
	}
	cost := fallback
	if draft.CoinCost != nil {
		cost = *draft.CoinCost
	}
	return cost, cost > 0
}
