package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors exported on /metrics
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration   *prometheus.HistogramVec
	UploadOutcomes    *prometheus.CounterVec
	CascadeFolders    prometheus.Counter
	CascadeFiles      prometheus.Counter
	BlobCleanupErrors prometheus.Counter
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "foldervault",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		UploadOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "foldervault",
			Name:      "upload_files_total",
			Help:      "Uploaded files by outcome.",
		}, []string{"outcome"}),
		CascadeFolders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "foldervault",
			Name:      "cascade_deleted_folders_total",
			Help:      "Folders removed by cascade deletes.",
		}),
		CascadeFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "foldervault",
			Name:      "cascade_deleted_files_total",
			Help:      "File records removed by cascade deletes.",
		}),
		BlobCleanupErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "foldervault",
			Name:      "blob_cleanup_failures_total",
			Help:      "Blobs that could not be removed after their record was deleted.",
		}),
	}

	reg.MustRegister(
		m.RequestDuration,
		m.UploadOutcomes,
		m.CascadeFolders,
		m.CascadeFiles,
		m.BlobCleanupErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// UploadAccepted counts a stored file
func (m *Metrics) UploadAccepted() {
	if m == nil {
		return
	}
	m.UploadOutcomes.WithLabelValues("accepted").Inc()
}

// UploadRejected counts a file rejected by validation or storage
func (m *Metrics) UploadRejected() {
	if m == nil {
		return
	}
	m.UploadOutcomes.WithLabelValues("rejected").Inc()
}

// CascadeCompleted records the size of a finished cascade
func (m *Metrics) CascadeCompleted(folders, files, blobFailures int) {
	if m == nil {
		return
	}
	m.CascadeFolders.Add(float64(folders))
	m.CascadeFiles.Add(float64(files))
	m.BlobCleanupErrors.Add(float64(blobFailures))
}

// BlobCleanupFailed counts one blob that could not be removed
func (m *Metrics) BlobCleanupFailed() {
	if m == nil {
		return
	}
	m.BlobCleanupErrors.Inc()
}
