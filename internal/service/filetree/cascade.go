package filetree

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"foldervault/internal/domain"
	models "foldervault/internal/domain/models/filetree"
	"foldervault/internal/domain/repositories"
	ftRepo "foldervault/internal/domain/repositories/filetree"
	ftSvc "foldervault/internal/domain/services/filetree"
	"foldervault/internal/metrics"

	"golang.org/x/sync/errgroup"
)

// blobDeleteConcurrency bounds concurrent blob removals per cascade
const blobDeleteConcurrency = 8

type cascadeService struct {
	folderRepo ftRepo.FolderRepository
	fileRepo   ftRepo.FileRepository
	blobs      repositories.BlobStore
	txManager  repositories.TransactionManager
	guard      *TreeGuard
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewCascadeService creates the subtree deletion engine
func NewCascadeService(
	folderRepo ftRepo.FolderRepository,
	fileRepo ftRepo.FileRepository,
	blobs repositories.BlobStore,
	txManager repositories.TransactionManager,
	guard *TreeGuard,
	m *metrics.Metrics,
	logger *slog.Logger,
) ftSvc.CascadeService {
	return &cascadeService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		blobs:      blobs,
		txManager:  txManager,
		guard:      guard,
		metrics:    m,
		logger:     logger,
	}
}

// CollectSubtree walks the tree with an explicit stack, so depth is bounded
// only by memory. Ids already seen are skipped, which also breaks cycles.
func (s *cascadeService) CollectSubtree(ctx context.Context, folderID string) ([]string, error) {
	ids := []string{folderID}
	visited := map[string]struct{}{folderID: {}}
	stack := []string{folderID}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := s.folderRepo.ListChildIDs(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("list children of %s: %w", current, err)
		}

		for _, child := range children {
			if _, seen := visited[child]; seen {
				s.logger.Warn("folder reachable twice, skipping", "folder_id", child, "parent_id", current)
				continue
			}
			visited[child] = struct{}{}
			ids = append(ids, child)
			stack = append(stack, child)
		}
	}

	return ids, nil
}

// DeleteSubtree removes the folder, all of its descendants, all files in
// them, and their blobs. File records are deleted in the same transaction as,
// and before, the folders holding them. The work is not cancelled when the
// caller goes away.
func (s *cascadeService) DeleteSubtree(ctx context.Context, folderID string) (*ftSvc.CascadeResult, error) {
	ctx = context.WithoutCancel(ctx)

	unlock := s.guard.Write()
	defer unlock()

	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder.IsRoot() {
		return nil, domain.NewValidationError("the root folder cannot be deleted")
	}

	subtree, err := s.CollectSubtree(ctx, folderID)
	if err != nil {
		return nil, err
	}

	files, err := s.fileRepo.ListByFolders(ctx, subtree)
	if err != nil {
		return nil, fmt.Errorf("list subtree files: %w", err)
	}

	blobFailures := s.deleteBlobs(ctx, files)

	fileIDs := make([]string, len(files))
	for i, f := range files {
		fileIDs[i] = f.ID
	}

	var deletedFiles, deletedFolders int64
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		if deletedFiles, err = s.fileRepo.DeleteMany(txCtx, fileIDs); err != nil {
			return fmt.Errorf("delete subtree files: %w", err)
		}
		if err = s.folderRepo.DetachFromParent(txCtx, folderID); err != nil {
			return fmt.Errorf("detach folder: %w", err)
		}
		if deletedFolders, err = s.folderRepo.DeleteMany(txCtx, subtree); err != nil {
			return fmt.Errorf("delete subtree folders: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &ftSvc.CascadeResult{
		DeletedFolders: int(deletedFolders),
		DeletedFiles:   int(deletedFiles),
		BlobFailures:   blobFailures,
	}
	s.metrics.CascadeCompleted(result.DeletedFolders, result.DeletedFiles, result.BlobFailures)

	s.logger.Info("folder subtree deleted",
		"id", folderID,
		"name", folder.Name,
		"folders", result.DeletedFolders,
		"files", result.DeletedFiles,
		"blob_failures", result.BlobFailures,
	)

	return result, nil
}

// deleteBlobs removes the blobs of files and returns how many could not be removed
func (s *cascadeService) deleteBlobs(ctx context.Context, files []models.File) int {
	var failures atomic.Int64
	var g errgroup.Group
	g.SetLimit(blobDeleteConcurrency)

	for _, f := range files {
		g.Go(func() error {
			if err := s.blobs.Delete(ctx, f.StorageKey); err != nil {
				failures.Add(1)
				s.logger.Warn("blob cleanup failed",
					"file_id", f.ID,
					"storage_key", f.StorageKey,
					"error", err,
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	return int(failures.Load())
}
