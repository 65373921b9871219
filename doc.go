// Package main provides the entry point for the vclab server.
//
// vclab exposes the building blocks of a video coding pipeline over HTTP:
// RGB/YUV colour conversion, serpentine (zig-zag) scanning, run-length
// coding, the 2-D DCT and a one-level Haar wavelet, plus media operations
// that run in-process (images) or through ffmpeg (video and audio).
//
// # Application Lifecycle
//
//  1. Memory Configuration: sets GOMEMLIMIT from MEMORY_LIMIT if present
//  2. Configuration Loading: reads environment variables, prepares directories
//  3. libvips Initialization: falls back to pure-Go imaging when unavailable
//  4. Database Initialization: opens the SQLite job history
//  5. Component Initialization:
//     - Transcoder: wraps ffmpeg/ffprobe (disabled if outputs are not writable)
//     - Image Processor: resize, grayscale, JPEG compression, YUV statistics
//     - Metrics Collector: refreshes output and database gauges every minute
//  6. HTTP Server Setup: routes, access log, metrics and gzip middleware
//  7. Graceful Shutdown: on SIGINT/SIGTERM
//
// # HTTP Server
//
//  1. Main Server (default port 8080):
//     - /api/rgb-to-yuv, /api/yuv-to-rgb, /api/serpentine
//     - /api/run-length/encode, /api/run-length/decode
//     - /api/dct/encode, /api/dct/decode, /api/dwt
//     - /api/resize, /api/color-to-bw, /api/compress, /api/chroma
//     - /api/video-info, /api/tracks, /api/convert, /api/bbb-container
//     - /api/motion-vectors, /api/yuv-histogram, /api/image/yuv-stats
//     - /api/outputs/{name}, /api/outputs/clear, /api/jobs
//     - /health, /healthz, /livez, /readyz, /version
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//     - Health check endpoint (/health)
//
// # Environment Variables
//
//   - PORT: main HTTP server port (default: 8080)
//   - METRICS_PORT: metrics server port (default: 9090)
//   - METRICS_ENABLED: enable the metrics server (default: true)
//   - WORK_DIR: parent of the uploads and outputs directories (default: /data)
//   - DATABASE_DIR: directory for vclab.db (default: /database)
//   - FFMPEG_PATH, FFPROBE_PATH: tool binaries (default: from PATH)
//   - MAX_UPLOAD_MB: multipart body limit (default: 512)
//   - TRANSCODE_TIMEOUT: per-request media job deadline (default: 10m)
//   - JPEG_QUALITY: default quality for image compression (default: 75)
//   - LOG_HEALTH_CHECKS: include health probes in the access log (default: true)
//   - WORKERS: override the worker pool size
//   - LOG_LEVEL: logging level (debug/info/warn/error)
//   - MEMORY_LIMIT, MEMORY_RATIO, GOMEMLIMIT: Go runtime memory limit
//
// # Graceful Shutdown
//
// On SIGINT or SIGTERM the server reports not-ready, stops the metrics
// collector, kills running ffmpeg processes, drains both HTTP servers with a
// 30 second deadline, then shuts down libvips and closes the database.
//
// The cmd/vclab binary runs the same codec components from the command line
// and maintains the job history.
package main
