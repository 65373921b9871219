package transcoder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vclab/internal/numeric"
)

func TestNew(t *testing.T) {
	trans := New(Config{OutputDir: "/tmp/out", Enabled: true})

	if trans == nil {
		t.Fatal("New() returned nil")
	}
	if trans.ffmpeg != "ffmpeg" || trans.ffprobe != "ffprobe" {
		t.Errorf("default tools = %q, %q, want ffmpeg, ffprobe", trans.ffmpeg, trans.ffprobe)
	}
	if trans.OutputDir() != "/tmp/out" {
		t.Errorf("OutputDir() = %q, want /tmp/out", trans.OutputDir())
	}
	if !trans.IsEnabled() {
		t.Error("Expected IsEnabled()=true")
	}
	if trans.processes == nil {
		t.Error("Expected processes map to be initialized")
	}
	if trans.Running() != 0 {
		t.Errorf("Running() = %d, want 0", trans.Running())
	}
}

func TestDependencyError(t *testing.T) {
	cause := errors.New("exit status 1")
	err := error(&DependencyError{Tool: "ffmpeg", Op: "resize", Stderr: "No such file or directory", Err: cause})

	if !errors.Is(err, ErrDependencyFailure) {
		t.Error("DependencyError should match ErrDependencyFailure")
	}
	if !errors.Is(err, cause) {
		t.Error("DependencyError should match its cause")
	}
	want := "ffmpeg resize failed: exit status 1: No such file or directory"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	var depErr *DependencyError
	if !errors.As(err, &depErr) || depErr.Stderr == "" {
		t.Error("errors.As should expose the stderr diagnostic")
	}
}

func TestTrimStderr(t *testing.T) {
	long := strings.Repeat("x", maxStderr+100)
	got := trimStderr("  " + long + "\n")
	if len(got) != maxStderr+3 || !strings.HasPrefix(got, "...") {
		t.Errorf("trimStderr kept %d bytes, want %d with ... prefix", len(got), maxStderr+3)
	}
	if got := trimStderr(" short\n"); got != "short" {
		t.Errorf("trimStderr(short) = %q", got)
	}
}

func TestDisabledTranscoder(t *testing.T) {
	trans := New(Config{OutputDir: t.TempDir(), Enabled: false})
	ctx := context.Background()

	ops := map[string]func() error{
		"Resize":    func() error { _, err := trans.Resize(ctx, "in.mp4", 2); return err },
		"Grayscale": func() error { _, err := trans.Grayscale(ctx, "in.mp4"); return err },
		"Compress":  func() error { _, err := trans.Compress(ctx, "in.jpg"); return err },
		"Convert":   func() error { _, err := trans.Convert(ctx, "in.mp4", "vp9"); return err },
		"BBB":       func() error { _, err := trans.BBBContainer(ctx, "in.mp4", 20); return err },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			if err := op(); !errors.Is(err, ErrDisabled) {
				t.Errorf("%s error = %v, want ErrDisabled", name, err)
			}
		})
	}
}

func TestMissingBinary(t *testing.T) {
	trans := newTestTranscoder(t, "/nonexistent/ffmpeg", "/nonexistent/ffprobe")

	_, err := trans.Grayscale(context.Background(), "in.png")
	if !errors.Is(err, ErrDependencyFailure) {
		t.Errorf("Grayscale() error = %v, want ErrDependencyFailure", err)
	}
	_, err = trans.Probe(context.Background(), "in.mp4")
	if !errors.Is(err, ErrDependencyFailure) {
		t.Errorf("Probe() error = %v, want ErrDependencyFailure", err)
	}
}

func TestOutputPath(t *testing.T) {
	trans := New(Config{OutputDir: "/data/outputs"})

	tests := []struct {
		name    string
		wantErr bool
	}{
		{"abc.resized-x2.mp4", false},
		{"", true},
		{".", true},
		{"..", true},
		{"../etc/passwd", true},
		{"sub/file.mp4", true},
		{`sub\file.mp4`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := trans.OutputPath(tt.name)
			if tt.wantErr {
				if !errors.Is(err, numeric.ErrInvalidInput) {
					t.Errorf("OutputPath(%q) error = %v, want ErrInvalidInput", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("OutputPath(%q) unexpected error: %v", tt.name, err)
			}
			if want := filepath.Join("/data/outputs", tt.name); got != want {
				t.Errorf("OutputPath(%q) = %q, want %q", tt.name, got, want)
			}
		})
	}
}

func TestStatsAndClearOutputs(t *testing.T) {
	dir := t.TempDir()
	trans := New(Config{OutputDir: dir, Enabled: true})

	files := map[string]string{
		"a.bw.png":       "12345",
		"b.vp9.webm":     "1234567890",
		"nested/c.ac3":   "123",
		"nested/d/e.mp3": "12",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	count, size := trans.Stats()
	if count != 2 || size != 15 {
		t.Errorf("Stats() = %d files, %d bytes, want 2 files, 15 bytes", count, size)
	}

	freed, err := trans.ClearOutputs()
	if err != nil {
		t.Fatalf("ClearOutputs() unexpected error: %v", err)
	}
	if freed != 20 {
		t.Errorf("ClearOutputs() freed %d bytes, want 20", freed)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("output directory still has %d entries", len(entries))
	}
}

func TestClearOutputsMissingDirectory(t *testing.T) {
	trans := New(Config{OutputDir: filepath.Join(t.TempDir(), "missing")})

	freed, err := trans.ClearOutputs()
	if err != nil || freed != 0 {
		t.Errorf("ClearOutputs() = %d, %v, want 0, nil", freed, err)
	}
}

func TestRunTimeout(t *testing.T) {
	trans := newTestTranscoder(t, slowTool(t), "")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := trans.Grayscale(ctx, "in.mp4")
	if !errors.Is(err, ErrDependencyFailure) {
		t.Errorf("Grayscale() error = %v, want ErrDependencyFailure", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Grayscale() error = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
	if trans.Running() != 0 {
		t.Errorf("Running() = %d after timeout, want 0", trans.Running())
	}
}

func TestCleanupKillsRunningProcesses(t *testing.T) {
	trans := newTestTranscoder(t, slowTool(t), "")

	done := make(chan error, 1)
	go func() {
		_, err := trans.Compress(context.Background(), "in.jpg")
		done <- err
	}()

	deadline := time.Now().Add(5 * time.Second)
	for trans.Running() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("process never started")
		}
		time.Sleep(10 * time.Millisecond)
	}

	trans.Cleanup()

	select {
	case err := <-done:
		if !errors.Is(err, ErrDependencyFailure) {
			t.Errorf("killed job error = %v, want ErrDependencyFailure", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Cleanup() did not stop the running process")
	}
}
