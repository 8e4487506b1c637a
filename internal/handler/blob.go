package handler

import (
	"log/slog"
	"net/http"
	"os"

	"foldervault/internal/domain/repositories"
	"foldervault/internal/httputil"
)

// BlobHandler serves stored blobs by key
type BlobHandler struct {
	blobs  repositories.BlobStore
	logger *slog.Logger
}

// NewBlobHandler creates a new blob handler
func NewBlobHandler(blobs repositories.BlobStore, logger *slog.Logger) *BlobHandler {
	return &BlobHandler{
		blobs:  blobs,
		logger: logger,
	}
}

// ServeBlob streams a blob
// GET /uploads/{key}
func (h *BlobHandler) ServeBlob(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	path, err := h.blobs.Resolve(key)
	if err != nil {
		httputil.RespondError(w, http.StatusNotFound, "file not found")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			h.logger.Error("failed to open blob", "storage_key", key, "error", err)
		}
		httputil.RespondError(w, http.StatusNotFound, "file not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		httputil.RespondError(w, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, key, info.ModTime(), f)
}
