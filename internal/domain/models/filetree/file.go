package filetree

import (
	"time"
)

type File struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"` // Original display name as uploaded
	Size       int64     `json:"size" db:"size"`
	MimeType   string    `json:"mimeType" db:"mime_type"`
	StorageKey string    `json:"-" db:"storage_key"` // Blob store key, never exposed
	FolderID   string    `json:"folderId" db:"folder_id"`
	URL        string    `json:"url,omitempty"` // Computed at the HTTP boundary, not stored
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
