package filetree

import (
	"context"
	"io"

	"foldervault/internal/domain/models/filetree"
)

// UploadedFile represents one stream of a multipart upload batch
type UploadedFile struct {
	Filename string
	MimeType string // Declared by the client, advisory
	Size     int64  // Declared size; -1 when unknown
	Content  io.Reader
}

// UploadService validates and persists uploaded files into a folder
type UploadService interface {
	// Ingest stores each file of the batch independently.
	// A rejected file does not prevent the others from being stored.
	Ingest(ctx context.Context, folderID string, files []UploadedFile) (*UploadResult, error)
}

// UploadResult represents the per-batch outcome
type UploadResult struct {
	Uploaded int             `json:"uploaded"`
	Files    []filetree.File `json:"files"`
	Errors   []UploadError   `json:"errors"`
}

// UploadError represents a rejected file
type UploadError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}
