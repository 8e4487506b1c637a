package filetree

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"foldervault/internal/config"
	"foldervault/internal/domain"
	models "foldervault/internal/domain/models/filetree"
	"foldervault/internal/domain/repositories"
	ftRepo "foldervault/internal/domain/repositories/filetree"
	ftSvc "foldervault/internal/domain/services/filetree"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type folderService struct {
	folderRepo ftRepo.FolderRepository
	txManager  repositories.TransactionManager
	cascade    ftSvc.CascadeService
	guard      *TreeGuard
	rootName   string
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo ftRepo.FolderRepository,
	txManager repositories.TransactionManager,
	cascade ftSvc.CascadeService, // Deletion is delegated to the cascade engine
	guard *TreeGuard,
	rootName string,
	logger *slog.Logger,
) ftSvc.FolderService {
	if rootName == "" {
		rootName = config.DefaultRootFolderName
	}
	return &folderService{
		folderRepo: folderRepo,
		txManager:  txManager,
		cascade:    cascade,
		guard:      guard,
		rootName:   rootName,
		logger:     logger,
	}
}

// EnsureRoot creates the root folder on first start and returns it
func (s *folderService) EnsureRoot(ctx context.Context) (*models.Folder, error) {
	root, err := s.folderRepo.EnsureRoot(ctx, s.rootName)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("root folder ready", "id", root.ID, "name", root.Name)
	return root, nil
}

// CreateFolder creates a new folder. A missing parentId places it directly under the root.
// Sibling names are not required to be unique.
func (s *folderService) CreateFolder(ctx context.Context, req *ftSvc.CreateFolderRequest) (*models.Folder, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateCreateRequest(req); err != nil {
		return nil, domain.NewValidationError("%v", err)
	}

	unlock := s.guard.Read()
	defer unlock()

	// Normalize empty string to nil for root-level folders
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	parentID := req.ParentID
	if parentID == nil {
		root, err := s.folderRepo.EnsureRoot(ctx, s.rootName)
		if err != nil {
			return nil, err
		}
		parentID = &root.ID
	}

	now := time.Now()
	folder := &models.Folder{
		Name:      req.Name,
		ParentID:  parentID,
		Icon:      normalizeIcon(req.Icon),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.folderRepo.Create(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", *folder.ParentID,
	)

	return folder, nil
}

// GetFolder retrieves a folder
func (s *folderService) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	return s.folderRepo.GetByID(ctx, id)
}

// ListFolders lists every folder in creation order
func (s *folderService) ListFolders(ctx context.Context) ([]models.Folder, error) {
	return s.folderRepo.ListAll(ctx)
}

// UpdateFolder renames a folder and/or changes its icon.
// A rejected request leaves the stored folder untouched.
func (s *folderService) UpdateFolder(ctx context.Context, id string, req *ftSvc.UpdateFolderRequest) (*models.Folder, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, domain.NewValidationError("%v", err)
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		folder.Name = strings.TrimSpace(*req.Name)
	}

	// Tri-state: only touch the icon if the field was present in the request
	if req.Icon.Present {
		folder.Icon = normalizeIcon(req.Icon.Value)
	}

	folder.UpdatedAt = time.Now()

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder updated",
		"id", folder.ID,
		"name", folder.Name,
		"icon_changed", req.Icon.Present,
	)

	return folder, nil
}

// DeleteFolder deletes the folder with its whole subtree
func (s *folderService) DeleteFolder(ctx context.Context, id string) (int, error) {
	result, err := s.cascade.DeleteSubtree(ctx, id)
	if err != nil {
		return 0, err
	}
	return result.DeletedFolders, nil
}

// validateCreateRequest validates a folder creation request (name already trimmed)
func (s *folderService) validateCreateRequest(req *ftSvc.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required.Error("folder name cannot be blank"),
			validation.RuneLength(1, config.MaxFolderNameLength),
		),
	)
}

// validateUpdateRequest validates a folder update request
func (s *folderService) validateUpdateRequest(req *ftSvc.UpdateFolderRequest) error {
	// At least one field must be provided
	if req.Name == nil && !req.Icon.Present {
		return errors.New("at least one field (name or icon) must be provided")
	}

	if req.Name != nil {
		return validation.Validate(strings.TrimSpace(*req.Name),
			validation.Required.Error("folder name cannot be blank"),
			validation.RuneLength(1, config.MaxFolderNameLength),
		)
	}

	return nil
}

// normalizeIcon treats an empty icon as no icon
func normalizeIcon(icon *string) *string {
	if icon == nil || strings.TrimSpace(*icon) == "" {
		return nil
	}
	v := *icon
	return &v
}
