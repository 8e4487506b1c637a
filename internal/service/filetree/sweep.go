package filetree

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"foldervault/internal/domain/repositories"
	ftRepo "foldervault/internal/domain/repositories/filetree"
	ftSvc "foldervault/internal/domain/services/filetree"
)

type sweepService struct {
	fileRepo    ftRepo.FileRepository
	blobs       repositories.BlobStore
	gracePeriod time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// NewSweepService creates the orphan blob sweeper. Blobs younger than
// gracePeriod are never removed, so uploads still writing their record survive.
func NewSweepService(
	fileRepo ftRepo.FileRepository,
	blobs repositories.BlobStore,
	gracePeriod time.Duration,
	logger *slog.Logger,
) ftSvc.SweepService {
	return &sweepService{
		fileRepo:    fileRepo,
		blobs:       blobs,
		gracePeriod: gracePeriod,
		now:         time.Now,
		logger:      logger,
	}
}

// Sweep removes blobs that no file record references
func (s *sweepService) Sweep(ctx context.Context, dryRun bool) (*ftSvc.SweepResult, error) {
	stored, err := s.blobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}

	keys, err := s.fileRepo.ListStorageKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list storage keys: %w", err)
	}

	referenced := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		referenced[key] = struct{}{}
	}

	cutoff := s.now().Add(-s.gracePeriod)
	result := &ftSvc.SweepResult{Orphaned: []string{}}

	for _, blob := range stored {
		result.Scanned++
		if _, ok := referenced[blob.Key]; ok {
			continue
		}
		if blob.ModTime.After(cutoff) {
			continue
		}

		result.Orphaned = append(result.Orphaned, blob.Key)
		if dryRun {
			continue
		}

		if err := s.blobs.Delete(ctx, blob.Key); err != nil {
			result.Failed++
			s.logger.Warn("orphan blob not removed", "storage_key", blob.Key, "error", err)
			continue
		}
		result.Removed++
	}

	s.logger.Info("blob sweep finished",
		"dry_run", dryRun,
		"scanned", result.Scanned,
		"orphaned", len(result.Orphaned),
		"removed", result.Removed,
		"failed", result.Failed,
	)

	return result, nil
}
