package repositories

import (
	"context"
	"io"
	"time"
)

// BlobInfo describes a blob written by a BlobStore
type BlobInfo struct {
	Key  string
	Size int64
}

// StoredBlob is a blob found on disk by List
type StoredBlob struct {
	Key     string
	ModTime time.Time
}

// BlobStore owns the physical bytes of uploaded files.
// Keys are generated by the store and are collision-free.
type BlobStore interface {
	// Put streams r into a new blob and returns its generated key.
	// originalName only contributes the file extension.
	Put(ctx context.Context, r io.Reader, originalName string) (*BlobInfo, error)

	// Delete removes a blob. Deleting an absent key is not an error.
	// Other failures are returned as *domain.BlobCleanupError.
	Delete(ctx context.Context, key string) error

	// Resolve returns the absolute location of a blob for serving
	Resolve(key string) (string, error)

	// Exists reports whether a blob is present
	Exists(ctx context.Context, key string) (bool, error)

	// List returns every stored blob
	List(ctx context.Context) ([]StoredBlob, error)
}
