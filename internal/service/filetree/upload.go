package filetree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"strings"
	"time"

	"foldervault/internal/config"
	"foldervault/internal/domain"
	models "foldervault/internal/domain/models/filetree"
	"foldervault/internal/domain/repositories"
	ftRepo "foldervault/internal/domain/repositories/filetree"
	ftSvc "foldervault/internal/domain/services/filetree"
	"foldervault/internal/metrics"
)

const defaultMimeType = "application/octet-stream"

type uploadService struct {
	folderRepo ftRepo.FolderRepository
	fileRepo   ftRepo.FileRepository
	blobs      repositories.BlobStore
	txManager  repositories.TransactionManager
	guard      *TreeGuard
	limits     config.UploadConfig
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewUploadService creates a new upload service
func NewUploadService(
	folderRepo ftRepo.FolderRepository,
	fileRepo ftRepo.FileRepository,
	blobs repositories.BlobStore,
	txManager repositories.TransactionManager,
	guard *TreeGuard,
	limits config.UploadConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
) ftSvc.UploadService {
	if limits.MaxFiles <= 0 {
		limits.MaxFiles = config.DefaultMaxFilesPerUpload
	}
	if limits.MaxFileSizeMB <= 0 {
		limits.MaxFileSizeMB = config.DefaultMaxFileSizeMB
	}
	return &uploadService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		blobs:      blobs,
		txManager:  txManager,
		guard:      guard,
		limits:     limits,
		metrics:    m,
		logger:     logger,
	}
}

// Ingest stores each file of the batch independently
func (s *uploadService) Ingest(ctx context.Context, folderID string, files []ftSvc.UploadedFile) (*ftSvc.UploadResult, error) {
	if len(files) == 0 {
		return nil, domain.NewValidationError("no files provided")
	}
	if len(files) > s.limits.MaxFiles {
		return nil, domain.NewValidationError("too many files: %d (max %d per upload)", len(files), s.limits.MaxFiles)
	}

	unlock := s.guard.Read()
	defer unlock()

	if _, err := s.folderRepo.GetByID(ctx, folderID); err != nil {
		return nil, err
	}

	result := &ftSvc.UploadResult{
		Files:  make([]models.File, 0, len(files)),
		Errors: make([]ftSvc.UploadError, 0),
	}

	for _, upload := range files {
		file, err := s.ingestOne(ctx, folderID, upload)
		if err != nil {
			s.metrics.UploadRejected()
			s.logger.Warn("file rejected",
				"folder_id", folderID,
				"filename", upload.Filename,
				"error", err,
			)
			result.Errors = append(result.Errors, ftSvc.UploadError{
				File:  upload.Filename,
				Error: clientMessage(err),
			})
			continue
		}

		s.metrics.UploadAccepted()
		result.Files = append(result.Files, *file)
	}

	result.Uploaded = len(result.Files)

	s.logger.Info("upload processed",
		"folder_id", folderID,
		"uploaded", result.Uploaded,
		"rejected", len(result.Errors),
	)

	return result, nil
}

func (s *uploadService) ingestOne(ctx context.Context, folderID string, upload ftSvc.UploadedFile) (*models.File, error) {
	name := strings.TrimSpace(upload.Filename)
	if name == "" {
		return nil, domain.NewValidationError("file name is required")
	}
	if len([]rune(name)) > config.MaxFileNameLength {
		return nil, domain.NewValidationError("file name exceeds %d characters", config.MaxFileNameLength)
	}

	maxBytes := s.limits.MaxFileSizeBytes()
	if upload.Size > maxBytes {
		return nil, s.tooLarge(name)
	}

	mimeType := normalizeMimeType(upload.MimeType)
	if !mimeAllowed(s.limits.AllowedMimeTypes, mimeType) {
		return nil, &domain.FileTypeError{MimeType: mimeType}
	}

	// Read one byte past the limit so an undeclared oversize stream is detected
	info, err := s.blobs.Put(ctx, io.LimitReader(upload.Content, maxBytes+1), name)
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}
	if info.Size > maxBytes {
		s.removeBlob(ctx, info.Key)
		return nil, s.tooLarge(name)
	}

	file := &models.File{
		Name:       name,
		Size:       info.Size,
		MimeType:   mimeType,
		StorageKey: info.Key,
		FolderID:   folderID,
		CreatedAt:  time.Now(),
	}
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.fileRepo.Create(txCtx, file)
	})
	if err != nil {
		s.removeBlob(ctx, info.Key)
		return nil, err
	}

	return file, nil
}

func (s *uploadService) tooLarge(name string) error {
	return domain.NewValidationError("file %q exceeds the %d MB limit", name, s.limits.MaxFileSizeMB)
}

func (s *uploadService) removeBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.metrics.BlobCleanupFailed()
		s.logger.Warn("blob cleanup failed", "storage_key", key, "error", err)
	}
}

// normalizeMimeType lowercases the media type and drops parameters
func normalizeMimeType(declared string) string {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return defaultMimeType
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return strings.ToLower(declared)
	}
	return mediaType
}

// mimeAllowed matches exact types and "type/*" wildcards. An empty list allows all.
func mimeAllowed(allowed []string, mimeType string) bool {
	if len(allowed) == 0 {
		return true
	}
	major, _, _ := strings.Cut(mimeType, "/")
	for _, pattern := range allowed {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		switch {
		case pattern == "*/*" || pattern == mimeType:
			return true
		case strings.HasSuffix(pattern, "/*") && strings.TrimSuffix(pattern, "/*") == major:
			return true
		}
	}
	return false
}

// clientMessage hides the text of server-side failures
func clientMessage(err error) string {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode() < 500 {
		return err.Error()
	}
	return "failed to store file"
}
