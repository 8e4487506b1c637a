// Package testutil provides in-memory implementations of the repository
// and blob store interfaces for service and handler tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"foldervault/internal/domain"
	models "foldervault/internal/domain/models/filetree"
	"foldervault/internal/domain/repositories"
	ftRepo "foldervault/internal/domain/repositories/filetree"

	"github.com/google/uuid"
)

type folderRow struct {
	folder models.Folder
	seq    int64
}

type fileRow struct {
	file models.File
	seq  int64
}

// MemoryStore is a relational-style in-memory store: children and files are
// derived from forward links, and a file may only reference an existing folder.
type MemoryStore struct {
	mu       sync.RWMutex
	txMu     sync.Mutex
	seq      int64
	folders  map[string]*folderRow
	files    map[string]*fileRow
	children map[string]map[string]struct{} // parent id -> child ids
	byFolder map[string]map[string]struct{} // folder id -> file ids

	// FailFileCreate makes FileRepository.Create return a storage error
	FailFileCreate bool
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		folders:  make(map[string]*folderRow),
		files:    make(map[string]*fileRow),
		children: make(map[string]map[string]struct{}),
		byFolder: make(map[string]map[string]struct{}),
	}
}

// Folders returns the folder repository view
func (s *MemoryStore) Folders() ftRepo.FolderRepository { return &memoryFolders{s} }

// Files returns the file repository view
func (s *MemoryStore) Files() ftRepo.FileRepository { return &memoryFiles{s} }

// TxManager returns a transaction manager that restores a snapshot when fn fails
func (s *MemoryStore) TxManager() repositories.TransactionManager { return &memoryTx{s} }

// FolderCount returns the number of stored folders
func (s *MemoryStore) FolderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.folders)
}

// FileCount returns the number of stored file records
func (s *MemoryStore) FileCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

func (s *MemoryStore) nextSeq() int64 {
	s.seq++
	return s.seq
}

func link(index map[string]map[string]struct{}, owner, id string) {
	set, ok := index[owner]
	if !ok {
		set = make(map[string]struct{})
		index[owner] = set
	}
	set[id] = struct{}{}
}

func unlink(index map[string]map[string]struct{}, owner, id string) {
	if set, ok := index[owner]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(index, owner)
		}
	}
}

// sortedFolderIDs returns ids ordered by insertion
func (s *MemoryStore) sortedFolderIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return s.folders[ids[i]].seq < s.folders[ids[j]].seq })
	return ids
}

func (s *MemoryStore) sortedFileIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return s.files[ids[i]].seq < s.files[ids[j]].seq })
	return ids
}

func (s *MemoryStore) folderView(row *folderRow) *models.Folder {
	f := row.folder
	f.Children = s.sortedFolderIDs(s.children[f.ID])
	f.Files = s.sortedFileIDs(s.byFolder[f.ID])
	return &f
}

type snapshot struct {
	seq     int64
	folders map[string]folderRow
	files   map[string]fileRow
}

func (s *MemoryStore) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		seq:     s.seq,
		folders: make(map[string]folderRow, len(s.folders)),
		files:   make(map[string]fileRow, len(s.files)),
	}
	for id, row := range s.folders {
		snap.folders[id] = *row
	}
	for id, row := range s.files {
		snap.files[id] = *row
	}
	return snap
}

func (s *MemoryStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = snap.seq
	s.folders = make(map[string]*folderRow, len(snap.folders))
	s.files = make(map[string]*fileRow, len(snap.files))
	s.children = make(map[string]map[string]struct{})
	s.byFolder = make(map[string]map[string]struct{})
	for id, row := range snap.folders {
		r := row
		s.folders[id] = &r
		if r.folder.ParentID != nil {
			link(s.children, *r.folder.ParentID, id)
		}
	}
	for id, row := range snap.files {
		r := row
		s.files[id] = &r
		link(s.byFolder, r.file.FolderID, id)
	}
}

type memoryTx struct{ s *MemoryStore }

func (t *memoryTx) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	snap := t.s.snapshot()
	if err := fn(ctx); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

type memoryFolders struct{ s *MemoryStore }

func (r *memoryFolders) EnsureRoot(ctx context.Context, name string) (*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range r.s.folders {
		if row.folder.ParentID == nil {
			return r.s.folderView(row), nil
		}
	}

	now := time.Now()
	row := &folderRow{
		folder: models.Folder{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now},
		seq:    r.s.nextSeq(),
	}
	r.s.folders[row.folder.ID] = row
	return r.s.folderView(row), nil
}

func (r *memoryFolders) Create(ctx context.Context, folder *models.Folder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if folder.ParentID == nil {
		return domain.NewValidationError("only the root may have no parent")
	}
	if _, ok := r.s.folders[*folder.ParentID]; !ok {
		return domain.NewNotFound("folder", *folder.ParentID)
	}

	folder.ID = uuid.NewString()
	row := &folderRow{folder: *folder, seq: r.s.nextSeq()}
	row.folder.Children = nil
	row.folder.Files = nil
	r.s.folders[folder.ID] = row
	link(r.s.children, *folder.ParentID, folder.ID)

	folder.Children = []string{}
	folder.Files = []string{}
	return nil
}

func (r *memoryFolders) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.folders[id]
	if !ok {
		return nil, domain.NewNotFound("folder", id)
	}
	return r.s.folderView(row), nil
}

func (r *memoryFolders) Update(ctx context.Context, folder *models.Folder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.folders[folder.ID]
	if !ok {
		return domain.NewNotFound("folder", folder.ID)
	}
	row.folder.Name = folder.Name
	row.folder.Icon = folder.Icon
	row.folder.UpdatedAt = folder.UpdatedAt
	return nil
}

func (r *memoryFolders) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.folders[id]
	if !ok {
		return domain.NewNotFound("folder", id)
	}
	if len(r.s.children[id]) > 0 || len(r.s.byFolder[id]) > 0 {
		return domain.NewValidationError("folder %s still contains folders or files", id)
	}
	r.s.removeFolder(row)
	return nil
}

func (s *MemoryStore) removeFolder(row *folderRow) {
	delete(s.folders, row.folder.ID)
	if row.folder.ParentID != nil {
		unlink(s.children, *row.folder.ParentID, row.folder.ID)
	}
}

// DeleteMany checks references at the end of the batch, like a deferred foreign key
func (r *memoryFolders) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	batch := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		batch[id] = struct{}{}
	}
	for id := range batch {
		if len(r.s.byFolder[id]) > 0 {
			return 0, domain.NewValidationError("folder %s still contains files", id)
		}
		for child := range r.s.children[id] {
			if _, ok := batch[child]; !ok {
				return 0, domain.NewValidationError("folder %s still has children outside the batch", id)
			}
		}
	}

	var n int64
	for id := range batch {
		if row, ok := r.s.folders[id]; ok {
			r.s.removeFolder(row)
			n++
		}
	}
	return n, nil
}

func (r *memoryFolders) ListAll(ctx context.Context) ([]models.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]*folderRow, 0, len(r.s.folders))
	for _, row := range r.s.folders {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	folders := make([]models.Folder, 0, len(rows))
	for _, row := range rows {
		folders = append(folders, *r.s.folderView(row))
	}
	return folders, nil
}

func (r *memoryFolders) ListChildIDs(ctx context.Context, id string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.sortedFolderIDs(r.s.children[id]), nil
}

func (r *memoryFolders) DetachFromParent(ctx context.Context, id string) error {
	return nil
}

type memoryFiles struct{ s *MemoryStore }

func (r *memoryFiles) Create(ctx context.Context, file *models.File) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.FailFileCreate {
		return domain.NewStorageError("create file", errInjected)
	}
	if _, ok := r.s.folders[file.FolderID]; !ok {
		return domain.NewNotFound("folder", file.FolderID)
	}

	file.ID = uuid.NewString()
	r.s.files[file.ID] = &fileRow{file: *file, seq: r.s.nextSeq()}
	link(r.s.byFolder, file.FolderID, file.ID)
	return nil
}

func (r *memoryFiles) GetByID(ctx context.Context, id string) (*models.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.files[id]
	if !ok {
		return nil, domain.NewNotFound("file", id)
	}
	f := row.file
	return &f, nil
}

func (r *memoryFiles) ListByFolder(ctx context.Context, folderID string) ([]models.File, error) {
	return r.ListByFolders(ctx, []string{folderID})
}

func (r *memoryFiles) ListByFolders(ctx context.Context, folderIDs []string) ([]models.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	files := make([]models.File, 0)
	for _, folderID := range folderIDs {
		for _, id := range r.s.sortedFileIDs(r.s.byFolder[folderID]) {
			files = append(files, r.s.files[id].file)
		}
	}
	return files, nil
}

func (r *memoryFiles) ListAll(ctx context.Context) ([]models.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	set := make(map[string]struct{}, len(r.s.files))
	for id := range r.s.files {
		set[id] = struct{}{}
	}
	files := make([]models.File, 0, len(set))
	for _, id := range r.s.sortedFileIDs(set) {
		files = append(files, r.s.files[id].file)
	}
	return files, nil
}

func (r *memoryFiles) ListStorageKeys(ctx context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	keys := make([]string, 0, len(r.s.files))
	for _, row := range r.s.files {
		keys = append(keys, row.file.StorageKey)
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *memoryFiles) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.files[id]
	if !ok {
		return domain.NewNotFound("file", id)
	}
	delete(r.s.files, id)
	unlink(r.s.byFolder, row.file.FolderID, id)
	return nil
}

func (r *memoryFiles) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, id := range ids {
		row, ok := r.s.files[id]
		if !ok {
			continue
		}
		delete(r.s.files, id)
		unlink(r.s.byFolder, row.file.FolderID, id)
		n++
	}
	return n, nil
}
