package service

import (
	"context"
	"fmt"
	"time"

	"firstlook/internal/analytics"
	"firstlook/internal/interfaces"

	"go.uber.org/zap"
)

const (
	metricsSnapshotKey    = "analytics:metrics"
	duplicatesSnapshotKey = "analytics:duplicates"
)

// AnalyticsService serves the admin read models, caching them when a
// snapshot cache is configured.
type AnalyticsService struct {
	stories interfaces.StoryRepository
	cache   interfaces.SnapshotCache
	ttl     time.Duration
	logger  *zap.Logger
}

func NewAnalyticsService(stories interfaces.StoryRepository, cache interfaces.SnapshotCache, ttl time.Duration, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		stories: stories,
		cache:   cache,
		ttl:     ttl,
		logger:  logger.Named("AnalyticsService"),
	}
}

// Metrics covers every chapter document, failed generations included.
func (s *AnalyticsService) Metrics(ctx context.Context) (*analytics.Metrics, error) {
	var cached analytics.Metrics
	if s.fromCache(ctx, metricsSnapshotKey, &cached) {
		return &cached, nil
	}

	stories, err := s.stories.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stories: %w", err)
	}
	m := analytics.ComputeMetrics(stories)
	s.toCache(ctx, metricsSnapshotKey, m)
	return &m, nil
}

// Duplicates only looks at published chapters, the same set CleanupDuplicates acts on.
func (s *AnalyticsService) Duplicates(ctx context.Context) ([]analytics.DuplicateTitle, error) {
	var cached []analytics.DuplicateTitle
	if s.fromCache(ctx, duplicatesSnapshotKey, &cached) {
		return cached, nil
	}

	stories, err := s.stories.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stories: %w", err)
	}
	dups := analytics.FindDuplicateTitles(stories)
	s.toCache(ctx, duplicatesSnapshotKey, dups)
	return dups, nil
}

func (s *AnalyticsService) fromCache(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("Snapshot cache read failed, recomputing", zap.String("key", key), zap.Error(err))
		return false
	}
	return found
}

func (s *AnalyticsService) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("Snapshot cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidateSnapshots drops every cached read model derived from stories.
func invalidateSnapshots(ctx context.Context, cache interfaces.SnapshotCache, logger *zap.Logger) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, metricsSnapshotKey, duplicatesSnapshotKey); err != nil {
		logger.Warn("Failed to invalidate analytics snapshots", zap.Error(err))
	}
}
