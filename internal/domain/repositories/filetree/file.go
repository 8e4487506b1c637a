package filetree

import (
	"context"

	"foldervault/internal/domain/models/filetree"
)

// FileRepository defines data access operations for file metadata records
type FileRepository interface {
	// Create stores a new file record and links it into its folder's files
	Create(ctx context.Context, file *filetree.File) error

	// GetByID retrieves a file by ID
	GetByID(ctx context.Context, id string) (*filetree.File, error)

	// ListByFolder lists files located directly in a folder
	ListByFolder(ctx context.Context, folderID string) ([]filetree.File, error)

	// ListByFolders lists files located in any of the given folders
	ListByFolders(ctx context.Context, folderIDs []string) ([]filetree.File, error)

	// ListAll lists every file record
	ListAll(ctx context.Context) ([]filetree.File, error)

	// ListStorageKeys returns the blob keys referenced by file records
	ListStorageKeys(ctx context.Context) ([]string, error)

	// Delete removes a file record and unlinks it from its folder
	Delete(ctx context.Context, id string) error

	// DeleteMany removes file records in one batch
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}
