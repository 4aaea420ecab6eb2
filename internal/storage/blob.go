package storage

import (
	"context"
	"io"
)

// BlobStore abstracts file content storage. The document core treats it as
// an external collaborator: record mutations never depend on blob results
// beyond success/failure.
type BlobStore interface {
	// Put stores an object under key
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Get opens an object for reading; the caller closes it
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object; deleting an absent object is a no-op
	Delete(ctx context.Context, key string) error
}
