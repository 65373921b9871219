package streaming

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"vclab/internal/logging"
	"vclab/internal/metrics"
)

var (
	// ErrWriteTimeout means a single write or the whole transfer took too long.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone means the request context was canceled mid-transfer.
	ErrClientGone = errors.New("client disconnected")

	// ErrWriterClosed is returned by Write after Close.
	ErrWriterClosed = errors.New("writer closed")
)

// Config bounds a single download.
type Config struct {
	// WriteTimeout is the longest a single chunk write may block.
	WriteTimeout time.Duration
	// MaxDuration caps the whole transfer (0 = unlimited).
	MaxDuration time.Duration
	// ChunkSize splits large writes so cancellation is noticed between
	// chunks (0 = write as received).
	ChunkSize int
}

// DefaultConfig returns the limits used for output downloads.
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 30 * time.Second,
		ChunkSize:    64 * 1024,
	}
}

// TimeoutWriter wraps an http.ResponseWriter so a stalled client cannot hold
// a handler goroutine forever.
type TimeoutWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	ctx     context.Context
	cancel  context.CancelFunc
	config  Config
	start   time.Time

	mu      sync.Mutex
	written int64
	closed  bool
}

// NewTimeoutWriter returns a writer bound to ctx, normally the request context.
func NewTimeoutWriter(ctx context.Context, w http.ResponseWriter, config Config) *TimeoutWriter {
	var cancel context.CancelFunc
	if config.MaxDuration > 0 {
		ctx, cancel = context.WithTimeout(ctx, config.MaxDuration)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	tw := &TimeoutWriter{
		w:      w,
		ctx:    ctx,
		cancel: cancel,
		config: config,
		start:  time.Now(),
	}
	if f, ok := w.(http.Flusher); ok {
		tw.flusher = f
	}
	return tw
}

// Write implements io.Writer.
func (tw *TimeoutWriter) Write(p []byte) (int, error) {
	tw.mu.Lock()
	closed := tw.closed
	tw.mu.Unlock()
	if closed {
		return 0, ErrWriterClosed
	}

	chunk := tw.config.ChunkSize
	if chunk <= 0 || chunk > len(p) {
		chunk = len(p)
	}

	total := 0
	for len(p) > 0 {
		if err := tw.ctx.Err(); err != nil {
			return total, tw.contextError()
		}

		size := min(chunk, len(p))
		n, err := tw.writeOnce(p[:size])
		total += n
		if err != nil {
			return total, err
		}
		p = p[size:]

		if tw.flusher != nil {
			tw.flusher.Flush()
		}
	}
	return total, nil
}

func (tw *TimeoutWriter) writeOnce(p []byte) (int, error) {
	if tw.config.WriteTimeout <= 0 {
		n, err := tw.w.Write(p)
		tw.account(n)
		return n, err
	}

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := tw.w.Write(p)
		done <- result{n, err}
	}()

	timer := time.NewTimer(tw.config.WriteTimeout)
	defer timer.Stop()

	select {
	case r := <-done:
		tw.account(r.n)
		return r.n, r.err
	case <-timer.C:
		tw.cancel()
		return 0, ErrWriteTimeout
	case <-tw.ctx.Done():
		return 0, tw.contextError()
	}
}

func (tw *TimeoutWriter) account(n int) {
	tw.mu.Lock()
	tw.written += int64(n)
	tw.mu.Unlock()
}

func (tw *TimeoutWriter) contextError() error {
	if errors.Is(tw.ctx.Err(), context.DeadlineExceeded) {
		return ErrWriteTimeout
	}
	return ErrClientGone
}

// Close releases the writer. It is safe to call more than once.
func (tw *TimeoutWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if !tw.closed {
		tw.closed = true
		tw.cancel()
	}
	return nil
}

// Stats reports bytes written and elapsed time.
func (tw *TimeoutWriter) Stats() (int64, time.Duration) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.written, time.Since(tw.start)
}

// ServeFile streams the file at path as an attachment. The caller is
// responsible for checking that path is inside the directory it serves.
// A missing file returns an error matching os.ErrNotExist before anything
// is written to w.
func ServeFile(ctx context.Context, w http.ResponseWriter, path, contentType string, config Config) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s is a directory: %w", filepath.Base(path), os.ErrNotExist)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	tw := NewTimeoutWriter(ctx, w, config)
	defer tw.Close()

	_, err = io.Copy(tw, f)
	written, elapsed := tw.Stats()
	metrics.DownloadBytesTotal.Add(float64(written))
	metrics.DownloadsTotal.WithLabelValues(downloadResult(err)).Inc()

	logging.Debug("Streamed %s: %d bytes in %v", filepath.Base(path), written, elapsed)
	return written, err
}

func downloadResult(err error) string {
	switch {
	case err == nil:
		return "complete"
	case errors.Is(err, ErrClientGone):
		return "client_gone"
	case errors.Is(err, ErrWriteTimeout):
		return "timeout"
	default:
		return "error"
	}
}
