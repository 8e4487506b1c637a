package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	models "foldervault/internal/domain/models/filetree"
	ftSvc "foldervault/internal/domain/services/filetree"
)

// sampleNode describes one folder of the sample tree
type sampleNode struct {
	name     string
	icon     string
	files    []sampleFile
	children []sampleNode
}

type sampleFile struct {
	name     string
	mimeType string
	content  string
}

// sampleTree is created under the root. Structure:
//
//	Projects
//	├── Website (index.html, notes.md)
//	│   └── Assets (logo.svg)
//	└── Archive
//	Personal (todo.txt)
var sampleTree = []sampleNode{
	{
		name: "Projects",
		icon: "briefcase",
		children: []sampleNode{
			{
				name: "Website",
				files: []sampleFile{
					{name: "index.html", mimeType: "text/html", content: "<h1>Hello</h1>\n"},
					{name: "notes.md", mimeType: "text/markdown", content: "# Notes\n\n- launch checklist\n"},
				},
				children: []sampleNode{
					{
						name: "Assets",
						files: []sampleFile{
							{name: "logo.svg", mimeType: "image/svg+xml", content: `<svg xmlns="http://www.w3.org/2000/svg"/>`},
						},
					},
				},
			},
			{name: "Archive"},
		},
	},
	{
		name: "Personal",
		icon: "user",
		files: []sampleFile{
			{name: "todo.txt", mimeType: "text/plain", content: "buy milk\n"},
		},
	},
}

// TreeSeeder creates a small sample folder tree through the services
type TreeSeeder struct {
	folders ftSvc.FolderService
	uploads ftSvc.UploadService
	logger  *slog.Logger
}

// NewTreeSeeder creates a new tree seeder
func NewTreeSeeder(folders ftSvc.FolderService, uploads ftSvc.UploadService, logger *slog.Logger) *TreeSeeder {
	return &TreeSeeder{
		folders: folders,
		uploads: uploads,
		logger:  logger,
	}
}

// Seed creates the sample tree and returns the number of folders and files created
func (s *TreeSeeder) Seed(ctx context.Context) (folders, files int, err error) {
	root, err := s.folders.EnsureRoot(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("ensure root: %w", err)
	}

	// Iterative walk: each entry pairs a sample node with its created parent
	type pending struct {
		node   sampleNode
		parent *models.Folder
	}
	stack := make([]pending, 0, len(sampleTree))
	for i := len(sampleTree) - 1; i >= 0; i-- {
		stack = append(stack, pending{node: sampleTree[i], parent: root})
	}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		req := &ftSvc.CreateFolderRequest{Name: item.node.name, ParentID: &item.parent.ID}
		if item.node.icon != "" {
			icon := item.node.icon
			req.Icon = &icon
		}
		folder, err := s.folders.CreateFolder(ctx, req)
		if err != nil {
			return folders, files, fmt.Errorf("create folder %q: %w", item.node.name, err)
		}
		folders++

		if len(item.node.files) > 0 {
			n, err := s.upload(ctx, folder, item.node.files)
			if err != nil {
				return folders, files, err
			}
			files += n
		}

		for i := len(item.node.children) - 1; i >= 0; i-- {
			stack = append(stack, pending{node: item.node.children[i], parent: folder})
		}
	}

	s.logger.Info("sample tree seeded", "folders", folders, "files", files)
	return folders, files, nil
}

func (s *TreeSeeder) upload(ctx context.Context, folder *models.Folder, samples []sampleFile) (int, error) {
	batch := make([]ftSvc.UploadedFile, len(samples))
	for i, f := range samples {
		batch[i] = ftSvc.UploadedFile{
			Filename: f.name,
			MimeType: f.mimeType,
			Size:     int64(len(f.content)),
			Content:  strings.NewReader(f.content),
		}
	}

	result, err := s.uploads.Ingest(ctx, folder.ID, batch)
	if err != nil {
		return 0, fmt.Errorf("upload into %q: %w", folder.Name, err)
	}
	for _, rejected := range result.Errors {
		s.logger.Warn("sample file rejected", "folder", folder.Name, "file", rejected.File, "error", rejected.Error)
	}
	return result.Uploaded, nil
}
