package filetree

import (
	"context"
	"log/slog"

	"foldervault/internal/domain"
	models "foldervault/internal/domain/models/filetree"
	ftRepo "foldervault/internal/domain/repositories/filetree"
	ftSvc "foldervault/internal/domain/services/filetree"
)

// treeService implements the TreeService interface
type treeService struct {
	folderRepo ftRepo.FolderRepository
	fileRepo   ftRepo.FileRepository
	logger     *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	folderRepo ftRepo.FolderRepository,
	fileRepo ftRepo.FileRepository,
	logger *slog.Logger,
) ftSvc.TreeService {
	return &treeService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		logger:     logger,
	}
}

// GetTree builds the nested folder/file tree under the root
func (s *treeService) GetTree(ctx context.Context) (*models.FolderTreeNode, error) {
	allFolders, err := s.folderRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	allFiles, err := s.fileRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	// Build folder hierarchy using 3-pass algorithm
	folderMap := make(map[string]*models.FolderTreeNode, len(allFolders))
	var root *models.FolderTreeNode

	// First pass: create all folder nodes
	for _, folder := range allFolders {
		folderMap[folder.ID] = &models.FolderTreeNode{
			ID:        folder.ID,
			Name:      folder.Name,
			ParentID:  folder.ParentID,
			Icon:      folder.Icon,
			CreatedAt: folder.CreatedAt,
			Folders:   []*models.FolderTreeNode{},
			Files:     []models.FileTreeNode{},
		}
	}

	// Second pass: nest folders by connecting children to parents
	for _, folder := range allFolders {
		node := folderMap[folder.ID]
		if folder.ParentID == nil {
			root = node
			continue
		}
		if parent, exists := folderMap[*folder.ParentID]; exists {
			parent.Folders = append(parent.Folders, node)
		}
	}

	// Third pass: add files to their folders
	for _, file := range allFiles {
		if parent, exists := folderMap[file.FolderID]; exists {
			parent.Files = append(parent.Files, models.FileTreeNode{
				ID:       file.ID,
				Name:     file.Name,
				Size:     file.Size,
				MimeType: file.MimeType,
			})
		}
	}

	if root == nil {
		return nil, domain.NewNotFound("folder", "root")
	}

	s.logger.Debug("tree built",
		"folder_count", len(allFolders),
		"file_count", len(allFiles),
	)

	return root, nil
}
