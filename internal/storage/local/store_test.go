package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"foldervault/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "blobs"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestStore_PutResolveDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	info, err := s.Put(ctx, strings.NewReader("hello"), "Report.PDF")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if info.Size != 5 {
		t.Errorf("Size = %d, want 5", info.Size)
	}
	if !strings.HasSuffix(info.Key, ".pdf") {
		t.Errorf("Key = %q, want .pdf suffix", info.Key)
	}
	if strings.Contains(info.Key, "Report") {
		t.Errorf("Key = %q must not contain the display name", info.Key)
	}

	path, err := s.Resolve(info.Key)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "hello" {
		t.Fatalf("blob content = %q, %v", data, err)
	}

	exists, err := s.Exists(ctx, info.Key)
	if err != nil || !exists {
		t.Fatalf("Exists() = %v, %v; want true", exists, err)
	}

	if err := s.Delete(ctx, info.Key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	exists, _ = s.Exists(ctx, info.Key)
	if exists {
		t.Error("blob still exists after Delete")
	}

	// Idempotent
	if err := s.Delete(ctx, info.Key); err != nil {
		t.Errorf("second Delete() error = %v, want nil", err)
	}
}

func TestStore_DeleteInvalidKey(t *testing.T) {
	s := newTestStore(t)

	err := s.Delete(context.Background(), "../etc/passwd")
	var cleanupErr *domain.BlobCleanupError
	if !errors.As(err, &cleanupErr) {
		t.Fatalf("Delete() error = %v, want BlobCleanupError", err)
	}
}

func TestValidKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"3f2a.png", true},
		{"noext", true},
		{"", false},
		{".", false},
		{"..", false},
		{"../x", false},
		{"a/b", false},
		{`a\b`, false},
		{"x..y", false},
	}

	for _, tt := range tests {
		if got := ValidKey(tt.key); got != tt.want {
			t.Errorf("ValidKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestSanitizeExt(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"photo.JPG", ".jpg"},
		{"archive.tar.gz", ".gz"},
		{"no-extension", ""},
		{"dir/../evil.sh", ".sh"},
		{`C:\Users\me\doc.docx`, ".docx"},
		{"weird.p$p", ""},
		{"trailing.", ""},
		{"long." + strings.Repeat("a", 40), ""},
	}

	for _, tt := range tests {
		if got := sanitizeExt(tt.name); got != tt.want {
			t.Errorf("sanitizeExt(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestStore_ConcurrentPutsNeverCollide(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	const n = 64
	keys := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			info, err := s.Put(ctx, strings.NewReader("same name"), "same.txt")
			if err != nil {
				t.Errorf("Put() error = %v", err)
				return
			}
			keys[i] = info.Key
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, k := range keys {
		if seen[k] {
			t.Fatalf("duplicate key %q", k)
		}
		seen[k] = true
	}

	blobs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(blobs) != n {
		t.Errorf("List() returned %d blobs, want %d", len(blobs), n)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestStore_PutRemovesPartialBlob(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Put(ctx, failingReader{}, "x.bin"); err == nil {
		t.Fatal("Put() expected error")
	}

	blobs, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(blobs) != 0 {
		t.Errorf("partial blob left behind: %v", blobs)
	}
}
