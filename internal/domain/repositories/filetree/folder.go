package filetree

import (
	"context"

	"foldervault/internal/domain/models/filetree"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// EnsureRoot returns the root folder, creating it if absent.
	// Safe under concurrent first boot.
	EnsureRoot(ctx context.Context, name string) (*filetree.Folder, error)

	// Create creates a new folder and links it into its parent's children
	Create(ctx context.Context, folder *filetree.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*filetree.Folder, error)

	// Update persists name and icon changes
	Update(ctx context.Context, folder *filetree.Folder) error

	// Delete removes a single folder node. Does not cascade.
	Delete(ctx context.Context, id string) error

	// DeleteMany removes folder nodes in one batch and returns how many were removed
	DeleteMany(ctx context.Context, ids []string) (int64, error)

	// ListAll retrieves every folder (flat list)
	ListAll(ctx context.Context) ([]filetree.Folder, error)

	// ListChildIDs lists the ids of immediate child folders
	ListChildIDs(ctx context.Context, id string) ([]string, error)

	// DetachFromParent removes id from its parent's children set
	DetachFromParent(ctx context.Context, id string) error
}
