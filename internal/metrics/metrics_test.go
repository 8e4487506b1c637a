package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCascadeCompleted(t *testing.T) {
	m := New()
	m.CascadeCompleted(3, 5, 1)
	m.CascadeCompleted(1, 0, 0)

	if got := testutil.ToFloat64(m.CascadeFolders); got != 4 {
		t.Errorf("cascade folders = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.CascadeFiles); got != 5 {
		t.Errorf("cascade files = %v, want 5", got)
	}
	if got := testutil.ToFloat64(m.BlobCleanupErrors); got != 1 {
		t.Errorf("blob failures = %v, want 1", got)
	}
}

func TestUploadOutcomes(t *testing.T) {
	m := New()
	m.UploadAccepted()
	m.UploadAccepted()
	m.UploadRejected()

	if got := testutil.ToFloat64(m.UploadOutcomes.WithLabelValues("accepted")); got != 2 {
		t.Errorf("accepted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.UploadOutcomes.WithLabelValues("rejected")); got != 1 {
		t.Errorf("rejected = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.UploadAccepted()
	m.UploadRejected()
	m.CascadeCompleted(1, 1, 1)
	m.BlobCleanupFailed()
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.BlobCleanupFailed()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "foldervault_blob_cleanup_failures_total 1") {
		t.Errorf("exposition missing blob failure counter:\n%s", rec.Body.String())
	}
}
