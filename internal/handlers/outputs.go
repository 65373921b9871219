package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"vclab/internal/logging"
	"vclab/internal/media"
	"vclab/internal/streaming"
)

// GetOutput streams a produced file.
// GET /api/outputs/{name}
func (h *Handlers) GetOutput(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	path, err := h.videos.OutputPath(name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	n, err := streaming.ServeFile(r.Context(), w, path, media.MimeType(name), h.stream)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		writeError(w, r, err)
	case errors.Is(err, streaming.ErrClientGone):
		logging.Debug("Client went away after %d bytes of %s", n, name)
	default:
		logging.Warn("Streaming %s stopped after %d bytes: %v", name, n, err)
	}
}

// ClearOutputs removes every produced file.
// POST /api/outputs/clear
func (h *Handlers) ClearOutputs(w http.ResponseWriter, r *http.Request) {
	freedBytes, err := h.videos.ClearOutputs()
	if err != nil {
		writeError(w, r, err)
		return
	}

	logging.Info("Outputs cleared, freed %d bytes", freedBytes)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"freedBytes": freedBytes,
	})
}
