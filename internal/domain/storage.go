package domain

import (
	"context"
	"io"
)

// ObjectStore persists uploaded images as immutable blobs under generated
// names and returns a durable URL for each.
type ObjectStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
}
