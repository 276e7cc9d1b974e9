// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup.
// The MinIO implementation works with any S3-compatible provider.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by Download when key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Storage is the interface for uploading and retrieving objects.
type Storage interface {
	// Upload streams data to the store under the given key. An existing
	// object with the same key is overwritten.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Download opens the object stored under key.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
