package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// profile extraction pipeline.
type Metrics struct {
	FilesDownloaded   prometheus.Counter
	DownloadBytes     prometheus.Counter
	SnapshotsDecoded  prometheus.Counter
	FieldsDecoded     prometheus.Counter
	ProfilesAssembled prometheus.Counter
	FilesWritten      prometheus.Counter
	RunErrors         prometheus.Counter
	PipelineRunning   prometheus.Gauge

	DownloadDuration prometheus.Histogram
	RunDuration      prometheus.Histogram

	// Submission metrics.
	SubmitRequests *prometheus.CounterVec // labels: outcome={created,duplicate,error}
	SubmitDuration prometheus.Histogram
	SubmitEnabled  prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FilesDownloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "model_munger",
			Name:      "files_downloaded_total",
			Help:      "Total forecast files fetched from the open-data server.",
		}),
		DownloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "model_munger",
			Name:      "download_bytes_total",
			Help:      "Total bytes fetched from the open-data server.",
		}),
		SnapshotsDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "model_munger",
			Name:      "snapshots_decoded_total",
			Help:      "Total forecast files decoded into snapshots.",
		}),
		FieldsDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "model_munger",
			Name:      "fields_decoded_total",
			Help:      "Total GRIB messages decoded into gridded fields.",
		}),
		ProfilesAssembled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "model_munger",
			Name:      "profiles_assembled_total",
			Help:      "Total per-site profiles assembled.",
		}),
		FilesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "model_munger",
			Name:      "files_written_total",
			Help:      "Total NetCDF files written.",
		}),
		RunErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "model_munger",
			Name:      "run_errors_total",
			Help:      "Total failed extraction runs.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "model_munger",
			Name:      "pipeline_running",
			Help:      "1 while a run is in progress, 0 otherwise.",
		}),
		DownloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "model_munger",
			Name:      "download_duration_seconds",
			Help:      "Duration of a single forecast file download.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "model_munger",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete download-extract-deliver run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		SubmitRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "model_munger",
			Name:      "submit_requests_total",
			Help:      "Data portal submissions by outcome.",
		}, []string{"outcome"}),
		SubmitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "model_munger",
			Name:      "submit_duration_seconds",
			Help:      "Duration of a single file submission.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SubmitEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "model_munger",
			Name:      "submit_enabled",
			Help:      "1 when data portal submission is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.FilesDownloaded,
		m.DownloadBytes,
		m.SnapshotsDecoded,
		m.FieldsDecoded,
		m.ProfilesAssembled,
		m.FilesWritten,
		m.RunErrors,
		m.PipelineRunning,
		m.DownloadDuration,
		m.RunDuration,
		m.SubmitRequests,
		m.SubmitDuration,
		m.SubmitEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FilesDownloaded:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "model_munger", Name: "files_downloaded_total"}),
		DownloadBytes:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "model_munger", Name: "download_bytes_total"}),
		SnapshotsDecoded:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "model_munger", Name: "snapshots_decoded_total"}),
		FieldsDecoded:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "model_munger", Name: "fields_decoded_total"}),
		ProfilesAssembled: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "model_munger", Name: "profiles_assembled_total"}),
		FilesWritten:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "model_munger", Name: "files_written_total"}),
		RunErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "model_munger", Name: "run_errors_total"}),
		PipelineRunning:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "model_munger", Name: "pipeline_running"}),
		DownloadDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "model_munger", Name: "download_duration_seconds"}),
		RunDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "model_munger", Name: "run_duration_seconds"}),
		SubmitRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "model_munger", Name: "submit_requests_total"}, []string{"outcome"}),
		SubmitDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "model_munger", Name: "submit_duration_seconds"}),
		SubmitEnabled:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "model_munger", Name: "submit_enabled"}),
	}
}
