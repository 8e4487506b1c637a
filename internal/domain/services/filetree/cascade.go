package filetree

import "context"

// CascadeService deletes folder subtrees together with their files and blobs
type CascadeService interface {
	// CollectSubtree returns the target id plus the ids of all its descendants
	CollectSubtree(ctx context.Context, folderID string) ([]string, error)

	// DeleteSubtree removes the folder, every descendant folder, every file in them, and their blobs
	DeleteSubtree(ctx context.Context, folderID string) (*CascadeResult, error)
}

// CascadeResult is the confirmation receipt of a cascade delete
type CascadeResult struct {
	DeletedFolders int `json:"deletedFolders"`
	DeletedFiles   int `json:"deletedFiles"`
	BlobFailures   int `json:"blobFailures"`
}
