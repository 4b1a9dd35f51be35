package interfaces

import (
	"context"
	"time"
)

// SnapshotCache stores JSON-encoded read models such as analytics snapshots.
//
//go:generate mockery --name SnapshotCache --output ./mocks --outpkg mocks --case=underscore
type SnapshotCache interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
