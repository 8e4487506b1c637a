package filetree

import "context"

// SweepService reclaims blobs no file record references
type SweepService interface {
	// Sweep removes orphaned blobs; with dryRun it only reports them
	Sweep(ctx context.Context, dryRun bool) (*SweepResult, error)
}

// SweepResult summarizes a sweep run
type SweepResult struct {
	Scanned  int      `json:"scanned"`
	Orphaned []string `json:"orphaned"`
	Removed  int      `json:"removed"`
	Failed   int      `json:"failed"`
}
