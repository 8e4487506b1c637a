package filetree

import (
	"context"
	"strings"
	"testing"

	"foldervault/internal/config"
	models "foldervault/internal/domain/models/filetree"
	ftSvc "foldervault/internal/domain/services/filetree"
	"foldervault/internal/metrics"
	"foldervault/internal/testutil"
)

type fixture struct {
	store   *testutil.MemoryStore
	blobs   *testutil.MemoryBlobStore
	metrics *metrics.Metrics
	folders ftSvc.FolderService
	files   ftSvc.FileService
	uploads ftSvc.UploadService
	cascade ftSvc.CascadeService
	tree    ftSvc.TreeService
	root    *models.Folder
}

func newFixture(t *testing.T, limits config.UploadConfig) *fixture {
	t.Helper()

	store := testutil.NewMemoryStore()
	blobs := testutil.NewMemoryBlobStore()
	m := metrics.New()
	guard := NewTreeGuard()
	logger := testutil.DiscardLogger()

	cascade := NewCascadeService(store.Folders(), store.Files(), blobs, store.TxManager(), guard, m, logger)
	f := &fixture{
		store:   store,
		blobs:   blobs,
		metrics: m,
		cascade: cascade,
		folders: NewFolderService(store.Folders(), store.TxManager(), cascade, guard, "Root", logger),
		files:   NewFileService(store.Folders(), store.Files(), blobs, store.TxManager(), guard, m, logger),
		uploads: NewUploadService(store.Folders(), store.Files(), blobs, store.TxManager(), guard, limits, m, logger),
		tree:    NewTreeService(store.Folders(), store.Files(), logger),
	}

	root, err := f.folders.EnsureRoot(context.Background())
	if err != nil {
		t.Fatalf("EnsureRoot: %v", err)
	}
	f.root = root
	return f
}

func (f *fixture) mkdir(t *testing.T, name string, parent *models.Folder) *models.Folder {
	t.Helper()
	req := &ftSvc.CreateFolderRequest{Name: name}
	if parent != nil {
		req.ParentID = &parent.ID
	}
	folder, err := f.folders.CreateFolder(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateFolder(%q): %v", name, err)
	}
	return folder
}

func (f *fixture) upload(t *testing.T, folder *models.Folder, name, mimeType, content string) models.File {
	t.Helper()
	result, err := f.uploads.Ingest(context.Background(), folder.ID, []ftSvc.UploadedFile{
		textFile(name, mimeType, content),
	})
	if err != nil {
		t.Fatalf("Ingest(%q): %v", name, err)
	}
	if result.Uploaded != 1 {
		t.Fatalf("Ingest(%q) uploaded %d, errors %v", name, result.Uploaded, result.Errors)
	}
	return result.Files[0]
}

func textFile(name, mimeType, content string) ftSvc.UploadedFile {
	return ftSvc.UploadedFile{
		Filename: name,
		MimeType: mimeType,
		Size:     int64(len(content)),
		Content:  strings.NewReader(content),
	}
}

func defaultLimits() config.UploadConfig {
	return config.UploadConfig{MaxFileSizeMB: 1, MaxFiles: 5}
}
