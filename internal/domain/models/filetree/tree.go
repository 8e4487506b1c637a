package filetree

import "time"

// FolderTreeNode represents a folder in the tree with nested children
type FolderTreeNode struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	ParentID  *string           `json:"parentId"`
	Icon      *string           `json:"icon,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	Folders   []*FolderTreeNode `json:"folders"` // Pointers for proper nesting
	Files     []FileTreeNode    `json:"files"`
}

// FileTreeNode represents a file in the tree (metadata only)
type FileTreeNode struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}
