package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrStorage    = errors.New("storage unavailable")
)

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a folder or file id that does not exist
	NotFoundError struct {
		Resource string // "folder" or "file"
		ID       string
	}

	// ValidationError indicates invalid input (empty name, oversize file, ...)
	ValidationError struct {
		Message string
	}

	// FileTypeError indicates an upload whose MIME type is not in the allow-list
	FileTypeError struct {
		MimeType string
	}
)

// NewNotFound builds a NotFoundError for the given resource type and id.
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: not found", e.Resource, e.ID)
}
func (e *ValidationError) Error() string { return e.Message }
func (e *FileTypeError) Error() string {
	return fmt.Sprintf("file type %q is not allowed", e.MimeType)
}

func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }
func (e *FileTypeError) StatusCode() int   { return http.StatusBadRequest }

// Is allows errors.Is() to match the typed errors against their sentinels
func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
func (e *FileTypeError) Is(target error) bool   { return target == ErrValidation }

// StorageError wraps a failure of the backing document store.
// It is fatal for the request and never retried automatically.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError wraps err as a StorageError for operation op
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error        { return e.Err }
func (e *StorageError) Is(target error) bool { return target == ErrStorage }
func (e *StorageError) StatusCode() int      { return http.StatusInternalServerError }

// BlobCleanupError reports a physical blob that could not be removed.
// It is recovered locally (logged) and never surfaced to API callers.
type BlobCleanupError struct {
	Key string
	Err error
}

func (e *BlobCleanupError) Error() string {
	return fmt.Sprintf("remove blob %s: %v", e.Key, e.Err)
}

func (e *BlobCleanupError) Unwrap() error { return e.Err }
