// Package local stores blobs as flat files in one directory on the local filesystem.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"foldervault/internal/domain"
	"foldervault/internal/domain/repositories"

	"github.com/google/uuid"
)

// maxExtLength bounds the extension carried over from the original file name
const maxExtLength = 16

// Store implements repositories.BlobStore on a single directory
type Store struct {
	baseDir string
}

// New creates the directory if needed and returns a Store rooted at it
func New(baseDir string) (*Store, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Store{baseDir: abs}, nil
}

var _ repositories.BlobStore = (*Store)(nil)

// Put writes r into a new blob named <uuid><ext>. The file is opened with
// O_EXCL so a concurrent writer can never overwrite it.
func (s *Store) Put(ctx context.Context, r io.Reader, originalName string) (*repositories.BlobInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := NewKey(originalName)
	path := filepath.Join(s.baseDir, key)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("create blob: %w", err)
	}

	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(path)
		if copyErr != nil {
			return nil, fmt.Errorf("write blob: %w", copyErr)
		}
		return nil, fmt.Errorf("close blob: %w", closeErr)
	}

	return &repositories.BlobInfo{Key: key, Size: n}, nil
}

// Delete removes a blob. Absent blobs are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	path, err := s.Resolve(key)
	if err != nil {
		return &domain.BlobCleanupError{Key: key, Err: err}
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &domain.BlobCleanupError{Key: key, Err: err}
	}
	return nil
}

// Resolve returns the absolute path of a blob. Keys containing path
// separators or parent references are rejected.
func (s *Store) Resolve(key string) (string, error) {
	if !ValidKey(key) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.baseDir, key), nil
}

// Exists reports whether the blob is present on disk
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	path, err := s.Resolve(key)
	if err != nil {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// List returns every regular file in the storage directory
func (s *Store) List(ctx context.Context) ([]repositories.StoredBlob, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}

	blobs := make([]repositories.StoredBlob, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info
			continue
		}
		blobs = append(blobs, repositories.StoredBlob{
			Key:     entry.Name(),
			ModTime: info.ModTime(),
		})
	}
	return blobs, nil
}

// NewKey generates a collision-free blob key keeping a sanitized extension
func NewKey(originalName string) string {
	return uuid.NewString() + sanitizeExt(originalName)
}

// ValidKey reports whether key is a single plain path element
func ValidKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return false
	}
	return filepath.Base(key) == key
}

// sanitizeExt keeps a lowercase [a-z0-9] extension of bounded length
func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(strings.ReplaceAll(name, `\`, "/"))))
	if len(ext) < 2 || len(ext) > maxExtLength {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
