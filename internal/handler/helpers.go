package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"foldervault/internal/domain"
	models "foldervault/internal/domain/models/filetree"
	"foldervault/internal/httputil"
)

// handleError converts domain errors to HTTP responses.
// Server-side failures are logged and answered without their details.
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var httpErr domain.HTTPError

	switch {
	case errors.As(err, &httpErr) && httpErr.StatusCode() < http.StatusInternalServerError:
		httputil.RespondError(w, httpErr.StatusCode(), err.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// fileURL builds the public download URL of a stored blob
func fileURL(baseURL, storageKey string) string {
	return baseURL + "/uploads/" + storageKey
}

// withURLs fills the computed url field of each file
func withURLs(baseURL string, files []models.File) []models.File {
	for i := range files {
		files[i].URL = fileURL(baseURL, files[i].StorageKey)
	}
	return files
}
