package handlers

import (
	"net/http"
	"strconv"

	"vclab/internal/database"
)

// JobsResponse is one page of the job history, newest first.
type JobsResponse struct {
	Jobs  []database.Job `json:"jobs"`
	Total int            `json:"total"`
}

// ListJobs returns the job history.
// GET /api/jobs?limit=N
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, badRequestf("limit must be a positive integer, got %q", raw))
			return
		}
		limit = n
	}

	resp := JobsResponse{Jobs: []database.Job{}}
	if h.jobs != nil {
		jobs, err := h.jobs.ListJobs(r.Context(), limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		total, err := h.jobs.CountJobs(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp = JobsResponse{Jobs: jobs, Total: total}
	}

	w.Header().Set("Cache-Control", "no-cache")
	respondJSON(w, http.StatusOK, resp)
}
