package filetree

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"foldervault/internal/domain"
	models "foldervault/internal/domain/models/filetree"
	ftRepo "foldervault/internal/domain/repositories/filetree"
	ftSvc "foldervault/internal/domain/services/filetree"
	"foldervault/internal/metrics"
	"foldervault/internal/testutil"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestDeleteSubtreeLeavesNoOrphans(t *testing.T) {
	f := newFixture(t, defaultLimits())
	ctx := context.Background()

	a := f.mkdir(t, "A", nil)
	b := f.mkdir(t, "B", a)
	x := f.upload(t, b, "x.txt", "text/plain", "hello")

	result, err := f.cascade.DeleteSubtree(ctx, a.ID)
	if err != nil {
		t.Fatalf("DeleteSubtree: %v", err)
	}

	if result.DeletedFolders != 2 || result.DeletedFiles != 1 || result.BlobFailures != 0 {
		t.Errorf("result = %+v, want 2 folders, 1 file, 0 failures", result)
	}

	for _, id := range []string{a.ID, b.ID} {
		if _, err := f.folders.GetFolder(ctx, id); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("folder %s still present: %v", id, err)
		}
	}
	if _, err := f.files.GetFile(ctx, x.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("file still present: %v", err)
	}
	if ok, _ := f.blobs.Exists(ctx, x.StorageKey); ok {
		t.Error("blob still present")
	}

	root, err := f.folders.GetFolder(ctx, f.root.ID)
	if err != nil {
		t.Fatalf("root gone: %v", err)
	}
	if len(root.Children) != 0 {
		t.Errorf("root children = %v, want none", root.Children)
	}
	if f.store.FolderCount() != 1 || f.store.FileCount() != 0 {
		t.Errorf("store has %d folders and %d files, want 1 and 0", f.store.FolderCount(), f.store.FileCount())
	}

	if got := promtest.ToFloat64(f.metrics.CascadeFolders); got != 2 {
		t.Errorf("cascade folder metric = %v, want 2", got)
	}
}

func TestDeleteLeafLeavesSiblings(t *testing.T) {
	f := newFixture(t, defaultLimits())
	ctx := context.Background()

	a := f.mkdir(t, "A", nil)
	b := f.mkdir(t, "B", nil)
	kept := f.upload(t, b, "kept.txt", "text/plain", "stay")

	n, err := f.folders.DeleteFolder(ctx, a.ID)
	if err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted count = %d, want 1", n)
	}

	if _, err := f.folders.GetFolder(ctx, b.ID); err != nil {
		t.Errorf("sibling affected: %v", err)
	}
	if _, err := f.files.GetFile(ctx, kept.ID); err != nil {
		t.Errorf("sibling file affected: %v", err)
	}
	if ok, _ := f.blobs.Exists(ctx, kept.StorageKey); !ok {
		t.Error("sibling blob removed")
	}
}

func TestDeleteRootRejected(t *testing.T) {
	f := newFixture(t, defaultLimits())
	ctx := context.Background()
	f.mkdir(t, "A", nil)

	_, err := f.folders.DeleteFolder(ctx, f.root.ID)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}

	if f.store.FolderCount() != 2 {
		t.Errorf("folder count = %d, want 2", f.store.FolderCount())
	}
}

func TestDeleteUnknownFolder(t *testing.T) {
	f := newFixture(t, defaultLimits())

	_, err := f.cascade.DeleteSubtree(context.Background(), "does-not-exist")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestBlobFailureDoesNotAbortCascade(t *testing.T) {
	f := newFixture(t, defaultLimits())
	ctx := context.Background()

	a := f.mkdir(t, "A", nil)
	for _, name := range []string{"1.txt", "2.txt", "3.txt"} {
		f.upload(t, a, name, "text/plain", name)
	}
	f.blobs.FailDelete = func(string) bool { return true }

	result, err := f.cascade.DeleteSubtree(ctx, a.ID)
	if err != nil {
		t.Fatalf("DeleteSubtree: %v", err)
	}

	if result.DeletedFiles != 3 || result.BlobFailures != 3 {
		t.Errorf("result = %+v, want 3 files and 3 blob failures", result)
	}
	if f.store.FileCount() != 0 {
		t.Errorf("file records left: %d", f.store.FileCount())
	}
	if got := promtest.ToFloat64(f.metrics.BlobCleanupErrors); got != 3 {
		t.Errorf("blob failure metric = %v, want 3", got)
	}
}

func TestDeepTreeCascade(t *testing.T) {
	f := newFixture(t, defaultLimits())
	ctx := context.Background()
	repo := f.store.Folders()

	const depth = 10000
	top := f.mkdir(t, "level-0", nil)
	parentID := top.ID
	for i := 1; i < depth; i++ {
		child := &models.Folder{Name: "level", ParentID: &parentID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
		if err := repo.Create(ctx, child); err != nil {
			t.Fatalf("create level %d: %v", i, err)
		}
		parentID = child.ID
	}

	ids, err := f.cascade.CollectSubtree(ctx, top.ID)
	if err != nil {
		t.Fatalf("CollectSubtree: %v", err)
	}
	if len(ids) != depth {
		t.Fatalf("collected %d ids, want %d", len(ids), depth)
	}

	result, err := f.cascade.DeleteSubtree(ctx, top.ID)
	if err != nil {
		t.Fatalf("DeleteSubtree: %v", err)
	}
	if result.DeletedFolders != depth {
		t.Errorf("deleted %d folders, want %d", result.DeletedFolders, depth)
	}
	if f.store.FolderCount() != 1 {
		t.Errorf("folder count = %d, want 1", f.store.FolderCount())
	}
}

// cyclicFolders serves a child graph that loops back on itself
type cyclicFolders struct {
	ftRepo.FolderRepository
	children map[string][]string
}

func (c *cyclicFolders) ListChildIDs(ctx context.Context, id string) ([]string, error) {
	return c.children[id], nil
}

func TestCollectSubtreeBreaksCycles(t *testing.T) {
	repo := &cyclicFolders{children: map[string][]string{
		"a": {"b", "c"},
		"b": {"d"},
		"d": {"a", "b"},
	}}
	svc := NewCascadeService(repo, nil, nil, nil, NewTreeGuard(), nil, testutil.DiscardLogger())

	ids, err := svc.CollectSubtree(context.Background(), "a")
	if err != nil {
		t.Fatalf("CollectSubtree: %v", err)
	}

	got := make(map[string]bool)
	for _, id := range ids {
		if got[id] {
			t.Errorf("id %s collected twice", id)
		}
		got[id] = true
	}
	for _, want := range []string{"a", "b", "c", "d"} {
		if !got[want] {
			t.Errorf("missing %s in %v", want, ids)
		}
	}
}

// failingFolderDeletes fails the batched folder removal
type failingFolderDeletes struct {
	ftRepo.FolderRepository
}

func (r *failingFolderDeletes) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	return 0, domain.NewStorageError("delete folders", errors.New("connection reset"))
}

func TestCascadeRollsBackFileRecordsOnFailure(t *testing.T) {
	store := testutil.NewMemoryStore()
	blobs := testutil.NewMemoryBlobStore()
	guard := NewTreeGuard()
	logger := testutil.DiscardLogger()

	folders := &failingFolderDeletes{FolderRepository: store.Folders()}
	cascade := NewCascadeService(folders, store.Files(), blobs, store.TxManager(), guard, metrics.New(), logger)
	folderSvc := NewFolderService(folders, store.TxManager(), cascade, guard, "Root", logger)
	uploads := NewUploadService(folders, store.Files(), blobs, store.TxManager(), guard, defaultLimits(), nil, logger)
	ctx := context.Background()

	a, err := folderSvc.CreateFolder(ctx, &ftSvc.CreateFolderRequest{Name: "A"})
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if _, err := uploads.Ingest(ctx, a.ID, []ftSvc.UploadedFile{textFile("x.txt", "text/plain", "x")}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if _, err := cascade.DeleteSubtree(ctx, a.ID); !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("err = %v, want storage error", err)
	}

	if store.FileCount() != 1 {
		t.Errorf("file count = %d, want 1 after rollback", store.FileCount())
	}
	if store.FolderCount() != 2 {
		t.Errorf("folder count = %d, want 2 after rollback", store.FolderCount())
	}
}

func TestCascadeSerializesAgainstWriters(t *testing.T) {
	const runs = 200
	for i := 0; i < runs; i++ {
		f := newFixture(t, defaultLimits())
		ctx := context.Background()
		a := f.mkdir(t, "A", nil)
		b := f.mkdir(t, "B", a)

		start := make(chan struct{})
		var wg sync.WaitGroup
		errs := make(chan error, 3)

		wg.Add(3)
		go func() {
			defer wg.Done()
			<-start
			if _, err := f.cascade.DeleteSubtree(ctx, a.ID); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			<-start
			_, err := f.uploads.Ingest(ctx, b.ID, []ftSvc.UploadedFile{textFile("x.txt", "text/plain", "x")})
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			<-start
			_, err := f.folders.CreateFolder(ctx, &ftSvc.CreateFolderRequest{Name: "C", ParentID: &b.ID})
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				errs <- err
			}
		}()

		close(start)
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Fatalf("run %d: %v", i, err)
		}

		if n := f.store.FileCount(); n != 0 {
			t.Fatalf("run %d: file count = %d, want 0", i, n)
		}
		if n := f.store.FolderCount(); n != 1 {
			t.Fatalf("run %d: folder count = %d, want only the root", i, n)
		}
		if n := f.blobs.Count(); n != 0 {
			t.Fatalf("run %d: blob count = %d, want 0", i, n)
		}
	}
}
