package handlers

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"

	"vclab/internal/logging"
	"vclab/internal/media"
	"vclab/internal/metrics"
)

// multipartMemory is how much of a multipart body is kept in memory; the
// rest spills to temporary files.
const multipartMemory = 32 << 20

// upload is a received file staged in the upload directory.
type upload struct {
	Path string
	Name string // original client file name
	Kind media.FileType
	Size int64
}

// Remove deletes the staged file.
func (u *upload) Remove() {
	if err := os.Remove(u.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn("Failed to remove upload %s: %v", filepath.Base(u.Path), err)
	}
}

// receiveUpload parses the multipart form and stores its "file" field
// under <uploadDir>/<blake2b-256 hex><ext>. The caller must Remove it.
func (h *Handlers) receiveUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, err
		}
		return nil, badRequestf("invalid multipart form: %v", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, badRequestf("missing upload field \"file\": %v", err)
	}
	defer file.Close()
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logging.Warn("Failed to remove multipart temp files: %v", err)
		}
	}()

	name := filepath.Base(header.Filename)
	ext := media.Ext(name)

	tmp, err := os.CreateTemp(h.uploadDir, "upload-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}

	hash, err := blake2b.New256(nil)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}

	size, err := io.Copy(io.MultiWriter(tmp, hash), file)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to store upload %s: %w", name, err)
	}
	if size == 0 {
		os.Remove(tmp.Name())
		return nil, badRequestf("uploaded file %s is empty", name)
	}

	// A concurrent request may be working on identical content under the
	// hashed name; keep the temporary name then so neither removes the
	// other's input.
	path := filepath.Join(h.uploadDir, hex.EncodeToString(hash.Sum(nil))+strings.ToLower(ext))
	if _, statErr := os.Stat(path); statErr == nil {
		path = tmp.Name()
	} else if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to store upload %s: %w", name, err)
	}

	kind := media.Classify(name)
	metrics.UploadsTotal.WithLabelValues(string(kind)).Inc()
	metrics.UploadBytes.Observe(float64(size))
	logging.Debug("Received %s (%s, %d bytes) as %s", name, kind, size, filepath.Base(path))

	return &upload{Path: path, Name: name, Kind: kind, Size: size}, nil
}
