package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"vclab/internal/database"
	"vclab/internal/logging"
	"vclab/internal/media"
	"vclab/internal/numeric"
	"vclab/internal/transcoder"
)

// maxJSONBody bounds the body of the pure codec endpoints.
const maxJSONBody = 16 << 20

// errBadRequest marks malformed requests: bad JSON, missing fields,
// unparsable form values.
var errBadRequest = errors.New("bad request")

func badRequestf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// ErrorResponse is the JSON body of every failed request. Tool and
// Diagnostic are set when an external tool failed.
type ErrorResponse struct {
	Error      string `json:"error"`
	Tool       string `json:"tool,omitempty"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// respondJSON writes v with the given status code. v is encoded before
// the header goes out, so a value that cannot be encoded turns into a 500
// carrying the encoder's message instead of an empty 200.
func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		logging.Error("failed to encode JSON response: %v", err)
		statusCode = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{Error: fmt.Sprintf("failed to encode response: %v", err)})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(append(body, '\n')); err != nil {
		logging.Debug("failed to write JSON response: %v", err)
	}
}

// writeError maps err to a status code and writes its full text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.Error("%s %s: %v", r.Method, r.URL.Path, err)
	} else {
		logging.Debug("%s %s: %v", r.Method, r.URL.Path, err)
	}

	resp := ErrorResponse{Error: err.Error()}
	var depErr *transcoder.DependencyError
	if errors.As(err, &depErr) {
		resp.Tool = depErr.Tool
		resp.Diagnostic = depErr.Stderr
	}
	respondJSON(w, status, resp)
}

func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest),
		errors.Is(err, numeric.ErrShapeMismatch),
		errors.Is(err, numeric.ErrInvalidInput),
		errors.Is(err, media.ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, transcoder.ErrDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return badRequestf("invalid JSON body: %v", err)
	}
	return nil
}

// record stores a job in the history. Failures are logged, never returned:
// the history is informational.
func (h *Handlers) record(r *http.Request, operation, input string, outputs []string, start time.Time, err error) {
	if h.jobs == nil {
		return
	}
	job := &database.Job{
		Operation:  operation,
		Input:      input,
		Outputs:    outputs,
		Status:     database.StatusFor(err),
		DurationMs: time.Since(start).Milliseconds(),
		CreatedAt:  start,
	}
	if err != nil {
		job.Error = err.Error()
	}
	if recErr := h.jobs.RecordJob(context.WithoutCancel(r.Context()), job); recErr != nil {
		logging.Warn("Failed to record %s job: %v", operation, recErr)
	}
}
