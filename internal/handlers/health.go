package handlers

import (
	"net/http"
	"runtime"
	"time"

	"vclab/internal/media"
	"vclab/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Capabilities
	Transcoding       bool `json:"transcoding"`
	Vips              bool `json:"vips"`
	RunningTranscodes int  `json:"runningTranscodes"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. Disabled
// transcoding reports "degraded" but still answers 200: the codec
// endpoints keep working.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	ready := h.IsReady()
	response := HealthResponse{
		Ready:             ready,
		Version:           startup.Version,
		Uptime:            time.Since(h.startTime).Round(time.Second).String(),
		Transcoding:       h.videos.IsEnabled(),
		Vips:              media.IsVipsAvailable(),
		RunningTranscodes: h.videos.Running(),
		GoVersion:         runtime.Version(),
		NumCPU:            runtime.NumCPU(),
		NumGoroutine:      runtime.NumGoroutine(),
	}

	status := http.StatusOK
	switch {
	case !ready:
		response.Status = statusStarting
		status = http.StatusServiceUnavailable
	case !response.Transcoding:
		response.Status = statusDegraded
	default:
		response.Status = statusHealthy
	}

	respondJSON(w, status, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only when the service is ready to accept traffic
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.IsReady() {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
}
