package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vclab/internal/database"
	"vclab/internal/handlers"
	"vclab/internal/logging"
	"vclab/internal/media"
	"vclab/internal/memory"
	"vclab/internal/metrics"
	"vclab/internal/middleware"
	"vclab/internal/startup"
	"vclab/internal/transcoder"

	"github.com/gorilla/mux"
)

const (
	shutdownTimeout   = 30 * time.Second
	collectorInterval = time.Minute
)

func main() {
	startTime := time.Now()

	// Size the Go heap before the first large allocation
	memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize libvips; imaging is used when it is unavailable
	vipsErr := media.InitVips()
	if vipsErr != nil {
		logging.Warn("libvips unavailable: %v", vipsErr)
	}
	startup.LogImagingInit(vipsErr == nil)

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	jobCount, err := db.CountJobs(context.Background())
	if err != nil {
		logging.Warn("Failed to count recorded jobs: %v", err)
	}
	startup.LogDatabaseInit(time.Since(dbStart), jobCount)

	// Initialize transcoder and image processor
	startup.LogTranscoderInit(config.TranscodingEnabled, config.FFmpegPath)
	trans := transcoder.New(transcoder.Config{
		FFmpegPath:  config.FFmpegPath,
		FFprobePath: config.FFprobePath,
		OutputDir:   config.OutputDir,
		Enabled:     config.TranscodingEnabled,
	})
	images := media.NewProcessor(config.OutputDir, config.JPEGQuality)

	// Initialize handlers
	h := handlers.New(trans, images, db, config)

	// Metrics
	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	collector := metrics.NewCollector(&statsAdapter{trans: trans, jobs: db}, config.DatabasePath, collectorInterval)
	collector.Start()

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = startMetricsServer(config.MetricsPort, h)
	}

	// Setup router
	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(router)

	// Apply compression middleware
	compressionConfig := middleware.DefaultCompressionConfig()
	handler := middleware.Compression(compressionConfig)(loggedHandler)

	// Create server. Uploads and transcodes are long, so only the header
	// read is bounded here; the transcode timeout bounds the work.
	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
	}

	// Start graceful shutdown handler
	done := make(chan struct{})
	go func() {
		handleShutdown(srv, metricsSrv, h, trans, collector)
		close(done)
	}()

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	h.SetReady(true)

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
	<-done

	media.ShutdownVips()
	if err := db.Close(); err != nil {
		logging.Warn("Database close error: %v", err)
	}
	startup.LogShutdownComplete()
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Pure codec components
	api.HandleFunc("/rgb-to-yuv", h.RGBToYUV).Methods("POST")
	api.HandleFunc("/yuv-to-rgb", h.YUVToRGB).Methods("POST")
	api.HandleFunc("/serpentine", h.Serpentine).Methods("POST")
	api.HandleFunc("/run-length/encode", h.RunLengthEncode).Methods("POST")
	api.HandleFunc("/run-length/decode", h.RunLengthDecode).Methods("POST")
	api.HandleFunc("/dct/encode", h.DCTEncode).Methods("POST")
	api.HandleFunc("/dct/decode", h.DCTDecode).Methods("POST")
	api.HandleFunc("/dwt", h.DWT).Methods("POST")

	// Media jobs
	api.HandleFunc("/resize", h.Resize).Methods("POST")
	api.HandleFunc("/color-to-bw", h.ColorToBW).Methods("POST")
	api.HandleFunc("/compress", h.Compress).Methods("POST")
	api.HandleFunc("/chroma", h.Chroma).Methods("POST")
	api.HandleFunc("/video-info", h.VideoInfo).Methods("POST")
	api.HandleFunc("/tracks", h.Tracks).Methods("POST")
	api.HandleFunc("/convert", h.Convert).Methods("POST")
	api.HandleFunc("/bbb-container", h.BBBContainer).Methods("POST")
	api.HandleFunc("/motion-vectors", h.MotionVectors).Methods("POST")
	api.HandleFunc("/yuv-histogram", h.YUVHistogram).Methods("POST")
	api.HandleFunc("/image/yuv-stats", h.ImageYUVStats).Methods("POST")

	// Outputs and history
	api.HandleFunc("/outputs/clear", h.ClearOutputs).Methods("POST")
	api.HandleFunc("/outputs/{name}", h.GetOutput).Methods("GET")
	api.HandleFunc("/jobs", h.ListJobs).Methods("GET")

	return r
}

func startMetricsServer(port string, h *handlers.Handlers) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", h.MetricsHandler())
	metricsMux.HandleFunc("/health", h.LivenessCheck)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      metricsMux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logging.Error("Metrics server error: %v", err)
		}
	}()
	return srv
}

// statsAdapter feeds the metrics collector from the output directory and
// the job history.
type statsAdapter struct {
	trans interface{ Stats() (int, int64) }
	jobs  interface {
		CountJobs(ctx context.Context) (int, error)
	}
}

func (a *statsAdapter) GetStats() metrics.Stats {
	files, size := a.trans.Stats()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	jobs, err := a.jobs.CountJobs(ctx)
	if err != nil {
		logging.Debug("Metrics: counting jobs failed: %v", err)
	}

	return metrics.Stats{
		OutputFiles:  files,
		OutputBytes:  size,
		JobsRecorded: jobs,
	}
}

func handleShutdown(srv, metricsSrv *http.Server, h *handlers.Handlers, trans *transcoder.Transcoder, collector *metrics.Collector) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())
	h.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	startup.LogShutdownStep("Cleaning up transcoder")
	trans.Cleanup()
	startup.LogShutdownStepComplete("Transcoder cleanup complete")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}
}
