package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"wrongbook/internal/domain"
)

// LocalObjectStore implements domain.ObjectStore on a local directory.
// Saved files are served as static content under the public base URL.
type LocalObjectStore struct {
	dir     string
	baseURL string
}

// NewLocalObjectStore creates the upload directory if needed.
func NewLocalObjectStore(dir, baseURL string) (*LocalObjectStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalObjectStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Save writes the object and returns its public URL. The name is generated
// by the caller; path separators are rejected.
func (s *LocalObjectStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid object name: %s", name)
	}

	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

// Delete removes the object; a missing file is not an error.
func (s *LocalObjectStore) Delete(ctx context.Context, name string) error {
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid object name: %s", name)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

var _ domain.ObjectStore = (*LocalObjectStore)(nil)
