package filetree

import "sync"

// TreeGuard orders cascades against writes that attach files or folders.
// A cascade holds the write lock while it collects and removes a subtree;
// folder creation, uploads and file deletion hold the read lock, so none of
// them can land in a folder after the cascade has read its subtree.
type TreeGuard struct {
	mu sync.RWMutex
}

// NewTreeGuard creates a guard shared by all services of one process
func NewTreeGuard() *TreeGuard {
	return &TreeGuard{}
}

// Read takes the shared lock and returns its release function
func (g *TreeGuard) Read() func() {
	g.mu.RLock()
	return g.mu.RUnlock
}

// Write takes the exclusive lock and returns its release function
func (g *TreeGuard) Write() func() {
	g.mu.Lock()
	return g.mu.Unlock
}
