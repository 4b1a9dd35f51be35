package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"firstlook/internal/interfaces"
	"firstlook/internal/models"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
)

var _ interfaces.CoverStore = (*GCSCoverStore)(nil)

const coverCacheControl = "public, max-age=31536000, immutable"

// GCSCoverStore writes cover images into a public bucket.
type GCSCoverStore struct {
	client *gcs.Client
	bucket string
	prefix string
	logger *zap.Logger
}

func NewGCSCoverStore(client *gcs.Client, bucket, prefix string, logger *zap.Logger) *GCSCoverStore {
	return &GCSCoverStore{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger.Named("GCSCoverStore"),
	}
}

func (s *GCSCoverStore) UploadCover(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty cover image", models.ErrInvalidInput)
	}
	object := path.Join(s.prefix, objectName)

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = coverCacheControl

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		s.logger.Error("Failed to write cover", zap.String("object", object), zap.Error(err))
		return "", fmt.Errorf("%w: failed to write cover %s: %v", models.ErrExternalService, object, err)
	}
	if err := w.Close(); err != nil {
		s.logger.Error("Failed to finalize cover upload", zap.String("object", object), zap.Error(err))
		return "", fmt.Errorf("%w: failed to upload cover %s: %v", models.ErrExternalService, object, err)
	}

	publicURL := PublicURL(s.bucket, object)
	s.logger.Info("Cover uploaded", zap.String("object", object), zap.Int("bytes", len(data)))
	return publicURL, nil
}

// PublicURL is the HTTPS address of an object in a public bucket.
func PublicURL(bucket, object string) string {
	escaped := make([]string, 0)
	for _, seg := range strings.Split(strings.TrimLeft(object, "/"), "/") {
		escaped = append(escaped, url.PathEscape(seg))
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, strings.Join(escaped, "/"))
}
