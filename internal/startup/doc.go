// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable the metrics server (default: true)
//   - WORK_DIR: Root for uploads and outputs (default: /data)
//   - DATABASE_DIR: Directory holding vclab.db (default: /database)
//   - FFMPEG_PATH / FFPROBE_PATH: media engine binaries (default: ffmpeg, ffprobe)
//   - MAX_UPLOAD_MB: multipart body limit (default: 512)
//   - TRANSCODE_TIMEOUT: per-request deadline for ffmpeg jobs (default: 10m)
//   - JPEG_QUALITY: default quality for image compression (default: 75)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - WORKERS: pins the worker pool size (default: derived from GOMAXPROCS)
//   - LOG_LEVEL / DEBUG: logging level
//
// The database and upload directories are required. The output directory
// is optional; when it cannot be written, transcoding is disabled.
//
// # Build Information
//
// Version, Commit and BuildTime are injected with -ldflags and exposed via
// [GetBuildInfo].
package startup
