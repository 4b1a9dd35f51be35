package service

import (
	"context"
	"fmt"
	"sort"

	"firstlook/internal/analytics"
	"firstlook/internal/interfaces"
	"firstlook/internal/models"

	"go.uber.org/zap"
)

const (
	OpStandardizeGenres  = "standardize_genres"
	OpStandardizePrices  = "standardize_prices"
	OpRemoveOrphanedTags = "remove_orphaned_tags"
	OpCleanupDuplicates  = "cleanup_duplicates"
)

// SeedLookup resolves a story title to the seed it was generated from.
type SeedLookup interface {
	SeedByTitle(title string) (models.Seed, bool)
}

// MaintenanceService runs the batch corrections over the story collection.
// Every operation computes its full patch list first and writes it once, so
// re-running on unchanged data writes nothing.
type MaintenanceService struct {
	stories interfaces.StoryRepository
	seeds   SeedLookup
	cache   interfaces.SnapshotCache
	logger  *zap.Logger
}

// NewMaintenanceService accepts a nil cache.
func NewMaintenanceService(stories interfaces.StoryRepository, seeds SeedLookup, cache interfaces.SnapshotCache, logger *zap.Logger) *MaintenanceService {
	return &MaintenanceService{
		stories: stories,
		seeds:   seeds,
		cache:   cache,
		logger:  logger.Named("MaintenanceService"),
	}
}

// StandardizeGenres resets each story's subgenre to the canonical value of
// its seed. Stories that match no seed are counted as skipped.
func (s *MaintenanceService) StandardizeGenres(ctx context.Context, dryRun bool) (*models.MaintenanceReport, error) {
	stories, err := s.stories.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stories: %w", err)
	}

	report := &models.MaintenanceReport{Operation: OpStandardizeGenres, Checked: len(stories), DryRun: dryRun}
	patches := make([]models.StoryPatch, 0)
	for _, st := range stories {
		seed, ok := s.matchSeed(st)
		if !ok {
			report.Skipped++
			continue
		}
		if st.Subgenre == seed.Subgenre {
			continue
		}
		genre := seed.Subgenre
		patches = append(patches, models.StoryPatch{StoryID: st.StoryID, Subgenre: &genre})
	}
	report.Updated = len(patches)

	return s.apply(ctx, report, patches)
}

// StandardizePrices sets coinCost and the matching isPremium flag for every
// listed chapter. Unknown ids are counted as skipped.
func (s *MaintenanceService) StandardizePrices(ctx context.Context, prices map[string]int, dryRun bool) (*models.MaintenanceReport, error) {
	for id, cost := range prices {
		if cost < 0 {
			return nil, fmt.Errorf("%w: negative coin cost %d for story %s", models.ErrInvalidInput, cost, id)
		}
	}

	stories, err := s.stories.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stories: %w", err)
	}
	byID := make(map[string]models.Story, len(stories))
	for _, st := range stories {
		byID[st.StoryID] = st
	}

	ids := make([]string, 0, len(prices))
	for id := range prices {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	report := &models.MaintenanceReport{Operation: OpStandardizePrices, Checked: len(ids), DryRun: dryRun}
	patches := make([]models.StoryPatch, 0)
	for _, id := range ids {
		st, ok := byID[id]
		if !ok {
			s.logger.Warn("Price mapping references unknown story", zap.String("storyID", id))
			report.Skipped++
			continue
		}
		cost := prices[id]
		premium := cost > 0
		if st.CoinCost == cost && st.IsPremium == premium {
			continue
		}
		patches = append(patches, models.StoryPatch{StoryID: id, CoinCost: &cost, IsPremium: &premium})
	}
	report.Updated = len(patches)

	return s.apply(ctx, report, patches)
}

// RemoveOrphanedTags deletes the legacy "tags" field wherever it still exists.
func (s *MaintenanceService) RemoveOrphanedTags(ctx context.Context, dryRun bool) (*models.MaintenanceReport, error) {
	stories, err := s.stories.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stories: %w", err)
	}

	report := &models.MaintenanceReport{Operation: OpRemoveOrphanedTags, Checked: len(stories), DryRun: dryRun}
	patches := make([]models.StoryPatch, 0)
	for _, st := range stories {
		if st.HasLegacyTags {
			patches = append(patches, models.StoryPatch{StoryID: st.StoryID, RemoveTags: true})
		}
	}
	report.Updated = len(patches)

	return s.apply(ctx, report, patches)
}

// CleanupDuplicates keeps, for every logical title published under several
// groups, the group with the most recent chapter and deletes the rest.
// Ties keep the first group encountered. Failed documents are not considered.
func (s *MaintenanceService) CleanupDuplicates(ctx context.Context, dryRun bool) (*models.MaintenanceReport, error) {
	stories, err := s.stories.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stories: %w", err)
	}

	report := &models.MaintenanceReport{Operation: OpCleanupDuplicates, Checked: len(stories), DryRun: dryRun}
	patches := make([]models.StoryPatch, 0)

	tg := analytics.GroupByTitle(stories)
	for _, title := range tg.Order {
		groups := tg.Groups[title]
		if len(groups) < 2 {
			continue
		}

		keep := 0
		for i := 1; i < len(groups); i++ {
			if groups[i].Latest().PublishedAt.After(groups[keep].Latest().PublishedAt) {
				keep = i
			}
		}
		for i, g := range groups {
			if i == keep {
				continue
			}
			s.logger.Info("Removing duplicate group",
				zap.String("title", title),
				zap.String("removedKey", g.Key),
				zap.String("keptKey", groups[keep].Key),
				zap.Int("chapters", len(g.Chapters)),
			)
			for _, ch := range g.Chapters {
				patches = append(patches, models.StoryPatch{StoryID: ch.StoryID, Delete: true})
			}
		}
	}
	report.Deleted = len(patches)

	return s.apply(ctx, report, patches)
}

// matchSeed tries seedTitleIdea, then title, then seriesTitle.
func (s *MaintenanceService) matchSeed(st models.Story) (models.Seed, bool) {
	candidates := []string{st.SeedTitleIdea, st.Title}
	if st.SeriesTitle != nil {
		candidates = append(candidates, *st.SeriesTitle)
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if seed, ok := s.seeds.SeedByTitle(c); ok {
			return seed, true
		}
	}
	return models.Seed{}, false
}

func (s *MaintenanceService) apply(ctx context.Context, report *models.MaintenanceReport, patches []models.StoryPatch) (*models.MaintenanceReport, error) {
	logFields := []zap.Field{
		zap.String("operation", report.Operation),
		zap.Int("checked", report.Checked),
		zap.Int("updated", report.Updated),
		zap.Int("deleted", report.Deleted),
		zap.Int("skipped", report.Skipped),
		zap.Bool("dryRun", report.DryRun),
	}

	if report.DryRun || len(patches) == 0 {
		s.logger.Info("Maintenance run finished without writes", logFields...)
		maintenanceRuns.WithLabelValues(report.Operation, "noop").Inc()
		return report, nil
	}

	if err := s.stories.ApplyPatches(ctx, patches); err != nil {
		s.logger.Error("Maintenance batch failed", append(logFields, zap.Error(err))...)
		maintenanceRuns.WithLabelValues(report.Operation, "error").Inc()
		return nil, fmt.Errorf("%s: failed to apply %d patches: %w", report.Operation, len(patches), err)
	}

	maintenanceRuns.WithLabelValues(report.Operation, "applied").Inc()
	maintenanceMutations.WithLabelValues(report.Operation, "updated").Add(float64(report.Updated))
	maintenanceMutations.WithLabelValues(report.Operation, "deleted").Add(float64(report.Deleted))
	invalidateSnapshots(ctx, s.cache, s.logger)

	s.logger.Info("Maintenance run applied", logFields...)
	return report, nil
}
