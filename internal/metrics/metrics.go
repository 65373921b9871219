package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vclab_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vclab_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vclab_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Codec metrics cover the in-process components: colorspace, scan, rle
// and transform.
var (
	CodecOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vclab_codec_operations_total",
			Help: "Total number of codec operations by component, operation and status",
		},
		[]string{"component", "operation", "status"},
	)

	CodecOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vclab_codec_operation_duration_seconds",
			Help:    "Codec operation duration in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"component", "operation"},
	)

	CodecElementsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vclab_codec_elements_processed_total",
			Help: "Total number of samples fed to codec operations",
		},
		[]string{"component"},
	)
)

// Image metrics cover in-process image operations.
var (
	ImageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vclab_image_operations_total",
			Help: "Total number of in-process image operations",
		},
		[]string{"operation", "backend", "status"},
	)

	ImageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vclab_image_operation_duration_seconds",
			Help:    "In-process image operation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "backend"},
	)
)

// Transcoder metrics
var (
	TranscoderJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vclab_transcoder_jobs_total",
			Help: "Total number of ffmpeg/ffprobe jobs",
		},
		[]string{"operation", "status"},
	)

	TranscoderJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vclab_transcoder_job_duration_seconds",
			Help:    "ffmpeg/ffprobe job duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"operation"},
	)

	TranscoderJobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vclab_transcoder_jobs_in_progress",
			Help: "Number of ffmpeg/ffprobe processes currently running",
		},
	)

	OutputFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vclab_output_files",
			Help: "Number of files in the output directory",
		},
	)

	OutputBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vclab_output_bytes",
			Help: "Total size of the output directory in bytes",
		},
	)
)

// Upload metrics
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vclab_uploads_total",
			Help: "Total number of uploaded files by media kind",
		},
		[]string{"kind"},
	)

	UploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vclab_upload_bytes",
			Help:    "Size of uploaded files in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)
)

// Download metrics
var (
	DownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vclab_output_downloads_total",
			Help: "Total number of output file downloads by result",
		},
		[]string{"result"},
	)

	DownloadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vclab_output_download_bytes_total",
			Help: "Total bytes streamed to clients from the output directory",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vclab_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vclab_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vclab_db_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)

	JobsRecorded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vclab_jobs_recorded",
			Help: "Number of jobs in the job history",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vclab_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}

// Runtime memory
var (
	GoMemoryLimitBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vclab_go_memory_limit_bytes",
			Help: "Soft memory limit applied to the Go runtime (0 when unset)",
		},
	)
)
