package filetree

import (
	"context"
	"log/slog"

	models "foldervault/internal/domain/models/filetree"
	"foldervault/internal/domain/repositories"
	ftRepo "foldervault/internal/domain/repositories/filetree"
	ftSvc "foldervault/internal/domain/services/filetree"
	"foldervault/internal/metrics"
)

type fileService struct {
	folderRepo ftRepo.FolderRepository
	fileRepo   ftRepo.FileRepository
	blobs      repositories.BlobStore
	txManager  repositories.TransactionManager
	guard      *TreeGuard
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(
	folderRepo ftRepo.FolderRepository,
	fileRepo ftRepo.FileRepository,
	blobs repositories.BlobStore,
	txManager repositories.TransactionManager,
	guard *TreeGuard,
	m *metrics.Metrics,
	logger *slog.Logger,
) ftSvc.FileService {
	return &fileService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		blobs:      blobs,
		txManager:  txManager,
		guard:      guard,
		metrics:    m,
		logger:     logger,
	}
}

// ListByFolder lists the files directly in a folder; the folder must exist
func (s *fileService) ListByFolder(ctx context.Context, folderID string) ([]models.File, error) {
	if _, err := s.folderRepo.GetByID(ctx, folderID); err != nil {
		return nil, err
	}
	return s.fileRepo.ListByFolder(ctx, folderID)
}

// GetFile retrieves a file record
func (s *fileService) GetFile(ctx context.Context, id string) (*models.File, error) {
	return s.fileRepo.GetByID(ctx, id)
}

// DeleteFile removes the record first and then its blob. A blob that cannot
// be removed is logged and left for the sweep.
func (s *fileService) DeleteFile(ctx context.Context, id string) error {
	unlock := s.guard.Read()
	defer unlock()

	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// The record and the folder's files entry go together
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.fileRepo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(context.WithoutCancel(ctx), file.StorageKey); err != nil {
		s.metrics.BlobCleanupFailed()
		s.logger.Warn("blob cleanup failed",
			"file_id", id,
			"storage_key", file.StorageKey,
			"error", err,
		)
	}

	s.logger.Info("file deleted",
		"id", id,
		"name", file.Name,
		"folder_id", file.FolderID,
	)

	return nil
}
