package filetree

import (
	"context"

	"foldervault/internal/domain/models/filetree"
	"foldervault/internal/httputil"
)

// FolderService handles folder business logic
type FolderService interface {
	// EnsureRoot creates the root folder on first start and returns it
	EnsureRoot(ctx context.Context) (*filetree.Folder, error)

	// CreateFolder creates a new folder under an existing parent (root when ParentID is empty)
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*filetree.Folder, error)

	// GetFolder retrieves a folder
	GetFolder(ctx context.Context, id string) (*filetree.Folder, error)

	// ListFolders lists every folder in the tree
	ListFolders(ctx context.Context) ([]filetree.Folder, error)

	// UpdateFolder renames a folder and/or changes its icon
	UpdateFolder(ctx context.Context, id string, req *UpdateFolderRequest) (*filetree.Folder, error)

	// DeleteFolder deletes a folder with its whole subtree and returns the number of folders removed
	DeleteFolder(ctx context.Context, id string) (int, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId,omitempty"` // nil or "" = directly under root
	Icon     *string `json:"icon,omitempty"`
}

// UpdateFolderRequest represents a folder update request
type UpdateFolderRequest struct {
	Name *string                 `json:"name,omitempty"` // rename
	Icon httputil.OptionalString `json:"icon"`           // absent = keep, null = clear
}
