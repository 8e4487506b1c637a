package testutil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"foldervault/internal/domain"
	"foldervault/internal/domain/repositories"

	"github.com/google/uuid"
)

var errInjected = errors.New("injected failure")

// MemoryBlobStore keeps blobs in memory and can be told to fail deletes
type MemoryBlobStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	modTime map[string]time.Time

	// FailDelete reports whether Delete should fail for key
	FailDelete func(key string) bool
	// FailPut makes every Put fail
	FailPut bool

	deletes int
}

// NewMemoryBlobStore creates an empty blob store
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{
		blobs:   make(map[string][]byte),
		modTime: make(map[string]time.Time),
	}
}

var _ repositories.BlobStore = (*MemoryBlobStore)(nil)

func (b *MemoryBlobStore) Put(ctx context.Context, r io.Reader, originalName string) (*repositories.BlobInfo, error) {
	if b.FailPut {
		return nil, errInjected
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return nil, err
	}

	key := uuid.NewString() + filepath.Ext(originalName)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = buf.Bytes()
	b.modTime[key] = time.Now()
	return &repositories.BlobInfo{Key: key, Size: n}, nil
}

func (b *MemoryBlobStore) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.deletes++
	if b.FailDelete != nil && b.FailDelete(key) {
		return &domain.BlobCleanupError{Key: key, Err: errInjected}
	}
	delete(b.blobs, key)
	delete(b.modTime, key)
	return nil
}

func (b *MemoryBlobStore) Resolve(key string) (string, error) {
	return "", errors.New("memory blob store cannot resolve paths")
}

func (b *MemoryBlobStore) Exists(ctx context.Context, key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.blobs[key]
	return ok, nil
}

func (b *MemoryBlobStore) List(ctx context.Context) ([]repositories.StoredBlob, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	blobs := make([]repositories.StoredBlob, 0, len(b.blobs))
	for key := range b.blobs {
		blobs = append(blobs, repositories.StoredBlob{Key: key, ModTime: b.modTime[key]})
	}
	sort.Slice(blobs, func(i, j int) bool { return blobs[i].Key < blobs[j].Key })
	return blobs, nil
}

// Add stores a blob directly, bypassing Put
func (b *MemoryBlobStore) Add(key string, data []byte, modTime time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = data
	b.modTime[key] = modTime
}

// Count returns the number of stored blobs
func (b *MemoryBlobStore) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.blobs)
}

// Deletes returns how many times Delete was called
func (b *MemoryBlobStore) Deletes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.deletes
}

// Data returns the bytes of a blob
func (b *MemoryBlobStore) Data(key string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.blobs[key]
	return data, ok
}
