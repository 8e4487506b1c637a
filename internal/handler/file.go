package handler

import (
	"log/slog"
	"net/http"

	ftSvc "foldervault/internal/domain/services/filetree"
	"foldervault/internal/httputil"
)

// FileHandler handles file metadata requests
type FileHandler struct {
	fileService ftSvc.FileService
	baseURL     string
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler. baseURL prefixes download URLs.
func NewFileHandler(fileService ftSvc.FileService, baseURL string, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		baseURL:     baseURL,
		logger:      logger,
	}
}

// ListFiles lists the files directly in a folder
// GET /api/files/{folderId}
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.fileService.ListByFolder(r.Context(), r.PathValue("folderId"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, withURLs(h.baseURL, files))
}

// DeleteFile removes a file record and its blob
// DELETE /api/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := h.fileService.DeleteFile(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
