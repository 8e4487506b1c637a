package filetree

import (
	"time"
)

// Folder is a node in the folder tree. Exactly one folder (the root) has a nil ParentID.
type Folder struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ParentID  *string   `json:"parentId" db:"parent_id"` // NULL = root
	Icon      *string   `json:"icon,omitempty" db:"icon"`
	Children  []string  `json:"children"` // Direct child folder ids
	Files     []string  `json:"files"`    // Ids of files located directly in this folder
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// IsRoot returns true if the folder is the tree root.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}
