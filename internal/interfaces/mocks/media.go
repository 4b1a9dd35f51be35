package mocks

import (
	"context"
	"time"

	"firstlook/internal/interfaces"
	"firstlook/internal/models"

	"github.com/stretchr/testify/mock"
)

// CoverStore is a mock type for the CoverStore type
type CoverStore struct {
	mock.Mock
}

func (m *CoverStore) UploadCover(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, objectName, data, contentType)
	return args.String(0), args.Error(1)
}

// GenerationTaskPublisher is a mock type for the GenerationTaskPublisher type
type GenerationTaskPublisher struct {
	mock.Mock
}

func (m *GenerationTaskPublisher) PublishGenerationTask(ctx context.Context, payload models.GenerationTaskPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// SnapshotCache is a mock type for the SnapshotCache type
type SnapshotCache struct {
	mock.Mock
}

func (m *SnapshotCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *SnapshotCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *SnapshotCache) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

var (
	_ interfaces.CoverStore              = (*CoverStore)(nil)
	_ interfaces.GenerationTaskPublisher = (*GenerationTaskPublisher)(nil)
	_ interfaces.SnapshotCache           = (*SnapshotCache)(nil)
)
