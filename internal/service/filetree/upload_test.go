package filetree

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"foldervault/internal/config"
	"foldervault/internal/domain"
	ftSvc "foldervault/internal/domain/services/filetree"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIngestBlockedMimeType(t *testing.T) {
	f := newFixture(t, config.UploadConfig{MaxFileSizeMB: 1, MaxFiles: 5, AllowedMimeTypes: []string{"image/png"}})
	folder := f.mkdir(t, "Images", nil)

	result, err := f.uploads.Ingest(context.Background(), folder.ID, []ftSvc.UploadedFile{
		textFile("notes.txt", "text/plain", "hello"),
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if result.Uploaded != 0 || len(result.Files) != 0 {
		t.Errorf("uploaded %d, want 0", result.Uploaded)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Error, "text/plain") {
		t.Errorf("errors = %+v, want one file type error", result.Errors)
	}
	if f.store.FileCount() != 0 || f.blobs.Count() != 0 {
		t.Errorf("store changed: %d files, %d blobs", f.store.FileCount(), f.blobs.Count())
	}
	if got := promtest.ToFloat64(f.metrics.UploadOutcomes.WithLabelValues("rejected")); got != 1 {
		t.Errorf("rejected metric = %v, want 1", got)
	}
}

func TestIngestPartialBatch(t *testing.T) {
	f := newFixture(t, config.UploadConfig{MaxFileSizeMB: 1, MaxFiles: 5, AllowedMimeTypes: []string{"image/*", "application/pdf"}})
	folder := f.mkdir(t, "Mixed", nil)

	result, err := f.uploads.Ingest(context.Background(), folder.ID, []ftSvc.UploadedFile{
		textFile("a.png", "image/png", "png"),
		textFile("b.exe", "application/x-msdownload", "exe"),
		textFile("c.pdf", "application/pdf; charset=binary", "pdf"),
		textFile("  ", "image/png", "nameless"),
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if result.Uploaded != 2 {
		t.Errorf("uploaded = %d, want 2 (errors %+v)", result.Uploaded, result.Errors)
	}
	if len(result.Errors) != 2 {
		t.Errorf("errors = %+v, want 2", result.Errors)
	}
	if result.Files[1].MimeType != "application/pdf" {
		t.Errorf("mime type = %q, want parameters stripped", result.Files[1].MimeType)
	}

	listed, _ := f.files.ListByFolder(context.Background(), folder.ID)
	if len(listed) != 2 {
		t.Errorf("listed %d files, want 2", len(listed))
	}
}

func TestIngestTooManyFiles(t *testing.T) {
	f := newFixture(t, config.UploadConfig{MaxFileSizeMB: 1, MaxFiles: 2})
	folder := f.mkdir(t, "Docs", nil)

	_, err := f.uploads.Ingest(context.Background(), folder.ID, []ftSvc.UploadedFile{
		textFile("1.txt", "text/plain", "1"),
		textFile("2.txt", "text/plain", "2"),
		textFile("3.txt", "text/plain", "3"),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if f.store.FileCount() != 0 || f.blobs.Count() != 0 {
		t.Error("files stored despite rejected batch")
	}
}

func TestIngestSizeLimit(t *testing.T) {
	oversize := bytes.Repeat([]byte("x"), 1<<20+1)

	tests := []struct {
		name     string
		declared int64
	}{
		{name: "declared oversize", declared: int64(len(oversize))},
		{name: "undeclared oversize", declared: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, config.UploadConfig{MaxFileSizeMB: 1, MaxFiles: 5})
			folder := f.mkdir(t, "Big", nil)

			result, err := f.uploads.Ingest(context.Background(), folder.ID, []ftSvc.UploadedFile{{
				Filename: "big.bin",
				MimeType: "application/octet-stream",
				Size:     tt.declared,
				Content:  bytes.NewReader(oversize),
			}})
			if err != nil {
				t.Fatalf("Ingest: %v", err)
			}
			if result.Uploaded != 0 || len(result.Errors) != 1 {
				t.Errorf("result = %+v, want one rejection", result)
			}
			if f.blobs.Count() != 0 {
				t.Errorf("blob left behind: %d", f.blobs.Count())
			}
		})
	}
}

func TestIngestExactLimitAccepted(t *testing.T) {
	f := newFixture(t, config.UploadConfig{MaxFileSizeMB: 1, MaxFiles: 5})
	folder := f.mkdir(t, "Edge", nil)
	content := bytes.Repeat([]byte("x"), 1<<20)

	result, err := f.uploads.Ingest(context.Background(), folder.ID, []ftSvc.UploadedFile{{
		Filename: "edge.bin",
		Size:     -1,
		Content:  bytes.NewReader(content),
	}})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.Uploaded != 1 {
		t.Fatalf("uploaded = %d, errors %+v", result.Uploaded, result.Errors)
	}
	if result.Files[0].Size != 1<<20 {
		t.Errorf("size = %d, want %d", result.Files[0].Size, 1<<20)
	}
	if result.Files[0].MimeType != "application/octet-stream" {
		t.Errorf("mime type = %q, want default", result.Files[0].MimeType)
	}
}

func TestIngestRecordFailureRemovesBlob(t *testing.T) {
	f := newFixture(t, defaultLimits())
	folder := f.mkdir(t, "Docs", nil)
	f.store.FailFileCreate = true

	result, err := f.uploads.Ingest(context.Background(), folder.ID, []ftSvc.UploadedFile{
		textFile("a.txt", "text/plain", "a"),
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.Uploaded != 0 || len(result.Errors) != 1 {
		t.Fatalf("result = %+v, want one rejection", result)
	}
	if result.Errors[0].Error != "failed to store file" {
		t.Errorf("error = %q, internal details leaked", result.Errors[0].Error)
	}
	if f.blobs.Count() != 0 {
		t.Errorf("blob left behind after record failure")
	}
}

func TestIngestUnknownFolder(t *testing.T) {
	f := newFixture(t, defaultLimits())

	_, err := f.uploads.Ingest(context.Background(), "missing", []ftSvc.UploadedFile{
		textFile("a.txt", "text/plain", "a"),
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if f.blobs.Count() != 0 {
		t.Error("blob stored for unknown folder")
	}
}

func TestMimeAllowed(t *testing.T) {
	tests := []struct {
		name     string
		allowed  []string
		mimeType string
		want     bool
	}{
		{name: "empty list allows all", allowed: nil, mimeType: "application/zip", want: true},
		{name: "exact match", allowed: []string{"image/png"}, mimeType: "image/png", want: true},
		{name: "case insensitive pattern", allowed: []string{"Image/PNG"}, mimeType: "image/png", want: true},
		{name: "wildcard match", allowed: []string{"image/*"}, mimeType: "image/webp", want: true},
		{name: "wildcard other type", allowed: []string{"image/*"}, mimeType: "text/plain", want: false},
		{name: "any", allowed: []string{"*/*"}, mimeType: "text/plain", want: true},
		{name: "not listed", allowed: []string{"image/png", "application/pdf"}, mimeType: "image/jpeg", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mimeAllowed(tt.allowed, tt.mimeType); got != tt.want {
				t.Errorf("mimeAllowed(%v, %q) = %v, want %v", tt.allowed, tt.mimeType, got, tt.want)
			}
		})
	}
}

func TestNormalizeMimeType(t *testing.T) {
	tests := map[string]string{
		"":                          "application/octet-stream",
		"  ":                        "application/octet-stream",
		"TEXT/Plain":                "text/plain",
		"text/plain; charset=utf-8": "text/plain",
	}

	for in, want := range tests {
		if got := normalizeMimeType(in); got != want {
			t.Errorf("normalizeMimeType(%q) = %q, want %q", in, got, want)
		}
	}
}
