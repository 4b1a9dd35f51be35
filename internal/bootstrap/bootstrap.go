// Package bootstrap opens the clients shared by the API server and the
// generation worker.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"firstlook/internal/ai"
	"firstlook/internal/catalog"
	"firstlook/internal/config"
	"firstlook/internal/database"
	"firstlook/internal/interfaces"
	"firstlook/internal/service"
	"firstlook/internal/storage"
)

// Infra holds the long-lived clients. Optional ones stay nil when they are
// not configured.
type Infra struct {
	Firestore *firestore.Client
	Redis     *redis.Client
	GCS       *gcs.Client
	Catalog   *catalog.Catalog

	Stories interfaces.StoryRepository
	Users   interfaces.UserRepository
	Cache   interfaces.SnapshotCache
	Covers  interfaces.CoverStore

	logger *zap.Logger
}

// Open connects to Firestore and, when configured, Redis and Cloud Storage.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Infra, error) {
	infra := &Infra{logger: logger}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	infra.Catalog = cat
	logger.Info("Catalog loaded", zap.Int("seeds", len(cat.AllSeeds())), zap.Int("packages", len(cat.AllPackages())))

	fs, err := database.NewFirestoreClient(ctx, database.FirestoreConfig{
		ProjectID:       cfg.FirebaseProjectID,
		CredentialsFile: cfg.FirebaseCredentials,
		EmulatorHost:    cfg.FirestoreEmulator,
	}, logger)
	if err != nil {
		return nil, err
	}
	infra.Firestore = fs
	infra.Stories = database.NewFirestoreStoryRepository(fs, logger)
	infra.Users = database.NewFirestoreUserRepository(fs, logger)

	if cfg.RedisAddr != "" {
		rdb, err := database.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisMaxRetries, cfg.RedisRetryDelay, logger)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.Redis = rdb
		infra.Cache = database.NewRedisSnapshotCache(rdb, logger)
	} else {
		logger.Info("REDIS_ADDR not set, analytics snapshots are not cached")
	}

	if cfg.CoverBucket != "" {
		var opts []option.ClientOption
		if cfg.FirebaseCredentials != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentials))
		}
		client, err := gcs.NewClient(ctx, opts...)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		infra.GCS = client
		infra.Covers = storage.NewGCSCoverStore(client, cfg.CoverBucket, cfg.CoverObjectPrefix, logger)
	} else {
		logger.Info("COVER_BUCKET not set, stories are stored without covers")
	}

	return infra, nil
}

// GenerationService wires the LLM clients; publisher may be nil.
func (i *Infra) GenerationService(cfg *config.Config, publisher interfaces.GenerationTaskPublisher) (*service.GenerationService, error) {
	text, err := ai.NewTextGenerator(ai.Config{
		ClientType:      cfg.AIClientType,
		BaseURL:         cfg.AIBaseURL,
		APIKey:          cfg.AIAPIKey,
		Model:           cfg.AIModel,
		Timeout:         cfg.AITimeout,
		MaxPromptTokens: cfg.AIMaxPromptTokens,
	}, i.logger)
	if err != nil {
		return nil, err
	}
	images := ai.NewImageGenerator(ai.ImageConfig{
		APIKey:  cfg.ImageAPIKey,
		BaseURL: cfg.ImageBaseURL,
		Model:   cfg.ImageModel,
		Size:    cfg.ImageSize,
		Timeout: cfg.ImageTimeout,
	}, i.logger)

	return service.NewGenerationService(
		i.Stories,
		i.Catalog,
		text,
		images,
		i.Covers,
		publisher,
		i.Cache,
		service.GenerationConfig{
			Author:      cfg.StoryAuthor,
			Temperature: cfg.AITemperature,
			MaxTokens:   cfg.AIMaxTokens,
		},
		i.logger,
	), nil
}

// Close releases every open client.
func (i *Infra) Close() error {
	var errs []error
	if i.Firestore != nil {
		errs = append(errs, i.Firestore.Close())
	}
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	if i.GCS != nil {
		errs = append(errs, i.GCS.Close())
	}
	return errors.Join(errs...)
}
