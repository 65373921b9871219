package transcoder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"vclab/internal/logging"
	"vclab/internal/metrics"
	"vclab/internal/numeric"
)

// Config holds the transcoder settings.
type Config struct {
	FFmpegPath  string
	FFprobePath string
	OutputDir   string
	Enabled     bool
}

// Transcoder runs ffmpeg and ffprobe jobs and owns the output directory.
type Transcoder struct {
	ffmpeg    string
	ffprobe   string
	outputDir string
	enabled   bool

	processes map[int64]*exec.Cmd
	nextID    int64
	processMu sync.Mutex
}

// New creates a new Transcoder instance. Empty tool paths default to
// "ffmpeg" and "ffprobe" resolved from PATH.
func New(cfg Config) *Transcoder {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	return &Transcoder{
		ffmpeg:    cfg.FFmpegPath,
		ffprobe:   cfg.FFprobePath,
		outputDir: cfg.OutputDir,
		enabled:   cfg.Enabled,
		processes: make(map[int64]*exec.Cmd),
	}
}

// IsEnabled returns whether output-producing operations are enabled.
func (t *Transcoder) IsEnabled() bool {
	return t.enabled
}

// OutputDir returns the directory outputs are written to.
func (t *Transcoder) OutputDir() string {
	return t.outputDir
}

// run executes one tool invocation and returns its stdout.
func (t *Transcoder) run(ctx context.Context, op, tool string, args ...string) ([]byte, error) {
	start := time.Now()
	metrics.TranscoderJobsInProgress.Inc()
	defer metrics.TranscoderJobsInProgress.Dec()

	cmd := exec.CommandContext(ctx, tool, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Debug("%s %s: %s %s", filepath.Base(tool), op, tool, strings.Join(args, " "))

	err := cmd.Start()
	if err == nil {
		id := t.track(cmd)
		err = cmd.Wait()
		t.untrack(id)
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		depErr := &DependencyError{
			Tool:   filepath.Base(tool),
			Op:     op,
			Stderr: trimStderr(stderr.String()),
			Err:    err,
		}
		metrics.ObserveTranscode(op, start, depErr)
		logging.Error("%v", depErr)
		return nil, depErr
	}

	metrics.ObserveTranscode(op, start, nil)
	logging.Debug("%s %s finished in %v", filepath.Base(tool), op, time.Since(start))
	return stdout.Bytes(), nil
}

// ffmpegRun runs ffmpeg with the common flags. The output path must be the
// last argument.
func (t *Transcoder) ffmpegRun(ctx context.Context, op string, args ...string) error {
	if !t.enabled {
		return ErrDisabled
	}
	full := append([]string{"-hide_banner", "-loglevel", "error", "-y"}, args...)
	_, err := t.run(ctx, op, t.ffmpeg, full...)
	return err
}

func (t *Transcoder) track(cmd *exec.Cmd) int64 {
	t.processMu.Lock()
	defer t.processMu.Unlock()
	t.nextID++
	t.processes[t.nextID] = cmd
	return t.nextID
}

func (t *Transcoder) untrack(id int64) {
	t.processMu.Lock()
	delete(t.processes, id)
	t.processMu.Unlock()
}

// Running returns the number of tool processes currently running.
func (t *Transcoder) Running() int {
	t.processMu.Lock()
	defer t.processMu.Unlock()
	return len(t.processes)
}

// Cleanup stops all running ffmpeg and ffprobe processes.
func (t *Transcoder) Cleanup() {
	t.processMu.Lock()
	defer t.processMu.Unlock()

	for id, cmd := range t.processes {
		logging.Info("Killing %s process (job %d)", filepath.Base(cmd.Path), id)
		if err := cmd.Process.Kill(); err != nil {
			logging.Warn("failed to kill %s process (job %d): %v", filepath.Base(cmd.Path), id, err)
		}
	}
}

// outputFile builds the output path for input under the output directory:
// <input stem>.<tag><ext>. Tags carry the parameters that change the
// result, so different settings never share a file.
func (t *Transcoder) outputFile(input, tag, ext string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(t.outputDir, fmt.Sprintf("%s.%s%s", stem, tag, ext))
}

// OutputPath resolves an output name to its path. Names with directory
// components are rejected.
func (t *Transcoder) OutputPath(name string) (string, error) {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return "", numeric.InvalidInputf("invalid output name %q", name)
	}
	return filepath.Join(t.outputDir, name), nil
}

// Stats reports the number of files in the output directory and their
// total size.
func (t *Transcoder) Stats() (files int, size int64) {
	entries, err := os.ReadDir(t.outputDir)
	if err != nil {
		return 0, 0
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files++
		size += info.Size()
	}
	return files, size
}

// ClearOutputs removes everything in the output directory and returns the
// number of bytes freed.
func (t *Transcoder) ClearOutputs() (int64, error) {
	if t.outputDir == "" {
		return 0, nil
	}

	var freedBytes int64

	entries, err := os.ReadDir(t.outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read output directory: %w", err)
	}

	for _, entry := range entries {
		path := filepath.Join(t.outputDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			logging.Warn("failed to get info for %s: %v", path, err)
			continue
		}

		if entry.IsDir() {
			dirSize, _ := dirSize(path)
			if err := os.RemoveAll(path); err != nil {
				logging.Warn("failed to remove directory %s: %v", path, err)
				continue
			}
			freedBytes += dirSize
		} else {
			if err := os.Remove(path); err != nil {
				logging.Warn("failed to remove file %s: %v", path, err)
				continue
			}
			freedBytes += info.Size()
		}
	}

	logging.Info("Cleared output directory: freed %d bytes", freedBytes)
	return freedBytes, nil
}

func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
