package interfaces

import (
	"context"

	"firstlook/internal/models"
)

// CoverStore persists generated cover images and returns their public URL.
//
//go:generate mockery --name CoverStore --output ./mocks --outpkg mocks --case=underscore
type CoverStore interface {
	UploadCover(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
}

// GenerationTaskPublisher queues generation requests for the worker.
//
//go:generate mockery --name GenerationTaskPublisher --output ./mocks --outpkg mocks --case=underscore
type GenerationTaskPublisher interface {
	PublishGenerationTask(ctx context.Context, payload models.GenerationTaskPayload) error
}
