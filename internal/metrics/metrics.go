// Package metrics provides Prometheus metrics for the document vault engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Mutation metrics
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvault_mutations_total",
			Help: "Total number of vault mutations",
		},
		[]string{"op", "status"},
	)

	mutationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docvault_mutation_duration_seconds",
			Help:    "Vault mutation duration in seconds, rescan included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	backendErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvault_backend_errors_total",
			Help: "Backend failures by error kind",
		},
		[]string{"kind"},
	)

	// Index metrics
	rescanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docvault_rescan_duration_seconds",
			Help:    "Time to scan a vault and rebuild its index",
			Buckets: prometheus.DefBuckets,
		},
	)

	rescansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvault_rescans_total",
			Help: "Total number of vault rescans",
		},
		[]string{"status"},
	)

	indexDocuments = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "docvault_index_documents",
			Help: "Number of documents in a project's index",
		},
		[]string{"project"},
	)

	indexEmptyFolders = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "docvault_index_empty_folders",
			Help: "Number of empty folders in a project's index",
		},
		[]string{"project"},
	)

	// Session metrics
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docvault_active_sessions",
			Help: "Number of open project sessions",
		},
	)

	savesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvault_saves_total",
			Help: "Total number of document saves",
		},
		[]string{"status"},
	)

	savedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docvault_saved_bytes_total",
			Help: "Total bytes written by document saves",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordMutation records a finished vault mutation.
func RecordMutation(op string, duration time.Duration, success bool) {
	mutationsTotal.WithLabelValues(op, status(success)).Inc()
	mutationDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordBackendError counts a backend failure of the given kind.
func RecordBackendError(kind string) {
	backendErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordRescan records a vault rescan.
func RecordRescan(duration time.Duration, success bool) {
	rescanDuration.Observe(duration.Seconds())
	rescansTotal.WithLabelValues(status(success)).Inc()
}

// SetIndexSize sets the current index size of a project.
func SetIndexSize(project string, documents, emptyFolders int) {
	indexDocuments.WithLabelValues(project).Set(float64(documents))
	indexEmptyFolders.WithLabelValues(project).Set(float64(emptyFolders))
}

// ForgetProject drops the per-project series of a closed project.
func ForgetProject(project string) {
	indexDocuments.DeleteLabelValues(project)
	indexEmptyFolders.DeleteLabelValues(project)
}

// SetActiveSessions sets the number of open sessions.
func SetActiveSessions(count int) {
	activeSessions.Set(float64(count))
}

// RecordSave records a document save.
func RecordSave(bytes int, success bool) {
	savesTotal.WithLabelValues(status(success)).Inc()
	if success {
		savedBytes.Add(float64(bytes))
	}
}
