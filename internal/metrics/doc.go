// Package metrics provides Prometheus instrumentation for vclab.
//
// All metrics are registered with the default registry through promauto
// and prefixed with "vclab_". They are served by the separate metrics
// server started in main.
//
// # Metric Categories
//
// HTTP:
//   - HTTPRequestsTotal: requests by method, path and status
//   - HTTPRequestDuration: request duration by method and path
//   - HTTPRequestsInFlight: requests currently being processed
//
// Codec (colorspace, scan, rle, transform):
//   - CodecOperationsTotal: operations by component, operation and status
//   - CodecOperationDuration: operation duration
//   - CodecElementsProcessed: samples fed to each component
//
// Images and transcoding:
//   - ImageOperationsTotal / ImageOperationDuration: in-process image work by backend (vips, imaging)
//   - TranscoderJobsTotal / TranscoderJobDuration: ffmpeg and ffprobe runs by operation
//   - TranscoderJobsInProgress: running external processes
//   - OutputFiles / OutputBytes: contents of the output directory
//   - UploadsTotal / UploadBytes: accepted uploads
//   - DownloadsTotal / DownloadBytesTotal: output files streamed to clients
//
// Database:
//   - DBQueryTotal / DBQueryDuration: job history queries by operation
//   - DBSizeBytes: SQLite file sizes (main, WAL, SHM)
//   - JobsRecorded: rows in the job history
//
// # Collector
//
// [Collector] refreshes the gauges that describe state rather than events:
//
//	collector := metrics.NewCollector(statsProvider, dbPath, time.Minute)
//	collector.Start()
//	defer collector.Stop()
//
// # Prometheus Queries
//
// Error rate of DCT encodes:
//
//	sum(rate(vclab_codec_operations_total{component="transform",status="error"}[5m]))
//
// P95 ffmpeg job time per operation:
//
//	histogram_quantile(0.95, sum(rate(vclab_transcoder_job_duration_seconds_bucket[5m])) by (le, operation))
package metrics
