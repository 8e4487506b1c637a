package filetree

import (
	"context"

	"foldervault/internal/domain/models/filetree"
)

// FileService handles file metadata operations
type FileService interface {
	// ListByFolder lists the files located directly in a folder
	ListByFolder(ctx context.Context, folderID string) ([]filetree.File, error)

	// GetFile retrieves a file record
	GetFile(ctx context.Context, id string) (*filetree.File, error)

	// DeleteFile removes a file record and, best-effort, its blob
	DeleteFile(ctx context.Context, id string) error
}
