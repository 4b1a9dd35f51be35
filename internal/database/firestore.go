package database

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	storiesCollection = "stories"
	usersCollection   = "users"

	// maxBatchWrites is the document store's limit of writes per batch.
	maxBatchWrites = 500
)

// FirestoreConfig holds the connection settings for the document store.
type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string
	// EmulatorHost is honoured by the client library through FIRESTORE_EMULATOR_HOST.
	EmulatorHost string
}

// NewFirestoreClient opens a Firestore client for the configured project.
func NewFirestoreClient(ctx context.Context, cfg FirestoreConfig, logger *zap.Logger) (*firestore.Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	logger.Info("Firestore client initialized",
		zap.String("projectID", cfg.ProjectID),
		zap.Bool("emulator", cfg.EmulatorHost != ""),
	)
	return client, nil
}
