package filetree

import (
	"context"

	"foldervault/internal/domain/models/filetree"
)

// TreeService defines operations for building the nested folder tree
type TreeService interface {
	// GetTree builds the nested folder/file tree starting at the root
	GetTree(ctx context.Context) (*filetree.FolderTreeNode, error)
}
