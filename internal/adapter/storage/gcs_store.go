package storage

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"

	"wrongbook/internal/domain"
)

// GCSObjectStore implements domain.ObjectStore on a Google Cloud Storage
// bucket. Objects are assumed publicly readable via the standard URL.
type GCSObjectStore struct {
	client *gcs.Client
	bucket string
}

// NewGCSObjectStore creates a client using application default credentials.
func NewGCSObjectStore(ctx context.Context, bucket string) (*GCSObjectStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket name cannot be empty")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcs client: %w", err)
	}
	return &GCSObjectStore{client: client, bucket: bucket}, nil
}

// Save uploads the object and returns its public URL.
func (s *GCSObjectStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object upload: %w", err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, name), nil
}

// Delete removes the object; a missing object is not an error.
func (s *GCSObjectStore) Delete(ctx context.Context, name string) error {
	err := s.client.Bucket(s.bucket).Object(name).Delete(ctx)
	if err != nil && err != gcs.ErrObjectNotExist {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *GCSObjectStore) Close() error {
	return s.client.Close()
}

var _ domain.ObjectStore = (*GCSObjectStore)(nil)
