package blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"moodr-backend/internal/config"
)

// ObjectStore wraps a MinIO (S3-compatible) bucket. Locators handed to
// the rest of the system are full public URLs; the mapping back to
// object keys stays inside this package.
type ObjectStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

func New(cfg *config.Config) (*ObjectStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object store client: %w", err)
	}

	baseURL := strings.TrimSuffix(cfg.MinioPublicURL, "/")
	if baseURL == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.MinioEndpoint, cfg.MinioBucket)
	}

	return &ObjectStore{
		client:  client,
		bucket:  cfg.MinioBucket,
		baseURL: baseURL,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// Put uploads an object and returns its public locator.
func (s *ObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	return s.URL(key), nil
}

func (s *ObjectStore) URL(key string) string {
	return s.baseURL + "/" + key
}

// KeyForURL maps a locator back to its object key. Returns false for
// locators that do not belong to this bucket.
func (s *ObjectStore) KeyForURL(url string) (string, bool) {
	if !strings.HasPrefix(url, s.baseURL+"/") {
		return "", false
	}
	return strings.TrimPrefix(url, s.baseURL+"/"), true
}

// DeleteURL removes the object behind a locator. Deleting an absent
// object is not an error; deletion is idempotent by key.
func (s *ObjectStore) DeleteURL(ctx context.Context, url string) error {
	key, ok := s.KeyForURL(url)
	if !ok {
		return fmt.Errorf("locator %q does not belong to bucket %s", url, s.bucket)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	return nil
}

// ListURLs enumerates every object in the bucket as a locator. Listing
// is expensive; only the out-of-band reconciliation sweep uses it.
func (s *ObjectStore) ListURLs(ctx context.Context) ([]string, error) {
	var urls []string
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		urls = append(urls, s.URL(object.Key))
	}

	return urls, nil
}
