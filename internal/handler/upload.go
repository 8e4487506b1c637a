package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"foldervault/internal/config"
	ftSvc "foldervault/internal/domain/services/filetree"
	"foldervault/internal/httputil"
)

const (
	// uploadField is the multipart field carrying the files
	uploadField = "files"

	// multipartMemory is kept in memory before parts spill to temp files
	multipartMemory = 8 << 20

	// multipartOverhead allows for boundaries and part headers
	multipartOverhead = 1 << 20
)

// UploadHandler handles multipart file uploads
type UploadHandler struct {
	uploadService ftSvc.UploadService
	limits        config.UploadConfig
	baseURL       string
	logger        *slog.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService ftSvc.UploadService, limits config.UploadConfig, baseURL string, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		limits:        limits,
		baseURL:       baseURL,
		logger:        logger,
	}
}

// Upload stores a batch of files into a folder
// POST /api/upload/{folderId}
// Returns 200 if at least one file was stored, 400 if all were rejected
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// One extra file of headroom so an oversized batch still reaches the count check
	maxBody := int64(h.limits.MaxFiles+1)*h.limits.MaxFileSizeBytes() + multipartOverhead
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondError(w, http.StatusBadRequest,
				fmt.Sprintf("upload exceeds the allowed size (%d MB per file, %d files)", h.limits.MaxFileSizeMB, h.limits.MaxFiles))
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[uploadField]
	files := make([]ftSvc.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "unreadable file part")
			closeAll(files)
			return
		}
		files = append(files, ftSvc.UploadedFile{
			Filename: fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Size:     fh.Size,
			Content:  f,
		})
	}
	defer closeAll(files)

	result, err := h.uploadService.Ingest(r.Context(), r.PathValue("folderId"), files)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	withURLs(h.baseURL, result.Files)

	if result.Uploaded == 0 {
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, "no files were accepted", map[string]interface{}{
			"uploaded": 0,
			"files":    result.Files,
			"errors":   result.Errors,
		})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

func closeAll(files []ftSvc.UploadedFile) {
	for _, f := range files {
		if c, ok := f.Content.(multipart.File); ok {
			_ = c.Close()
		}
	}
}
