package transcoder

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

const neverMatches = "__no_failure__"

const probeReport = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1280, "height": 720, "pix_fmt": "yuv420p", "avg_frame_rate": "30000/1001"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "channels": 2},
    {"index": 2, "codec_name": "mov_text", "codec_type": "subtitle"},
    {"index": 3, "codec_name": "ttf", "codec_type": "attachment"}
  ],
  "format": {"filename": "clip.mp4", "format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "20.020000", "bit_rate": "1500000", "size": "3753750"}
}`

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ffmpeg/ffprobe are POSIX shell scripts")
	}
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("failed to write fake %s: %v", name, err)
	}
	return path
}

// fakeFFmpeg writes an ffmpeg stand-in that appends its arguments to a log
// file and creates its last argument. It fails with a diagnostic on stderr
// when the arguments contain failOn.
func fakeFFmpeg(t *testing.T, failOn string) (bin, logPath string) {
	t.Helper()
	requireShell(t)
	if failOn == "" {
		failOn = neverMatches
	}
	dir := t.TempDir()
	logPath = filepath.Join(dir, "ffmpeg.log")
	bin = writeScript(t, dir, "ffmpeg", fmt.Sprintf(`echo "$*" >> '%s'
for last; do :; done
case "$*" in
*%s*) echo "Invalid data found when processing input" >&2; exit 1 ;;
esac
echo fake > "$last"
`, logPath, failOn))
	return bin, logPath
}

// fakeFFprobe writes an ffprobe stand-in that prints report, or fails when
// the probed file name contains "corrupt".
func fakeFFprobe(t *testing.T, report string) string {
	t.Helper()
	requireShell(t)
	return writeScript(t, t.TempDir(), "ffprobe", `for last; do :; done
case "$last" in
*corrupt*) echo "moov atom not found" >&2; exit 1 ;;
esac
cat <<'JSON'
`+report+`
JSON
`)
}

// slowTool writes a stand-in that sleeps long enough to be killed.
func slowTool(t *testing.T) string {
	t.Helper()
	requireShell(t)
	return writeScript(t, t.TempDir(), "ffmpeg", "exec sleep 30\n")
}

func readLog(t *testing.T, logPath string) []string {
	t.Helper()
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read ffmpeg log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func newTestTranscoder(t *testing.T, ffmpeg, ffprobe string) *Transcoder {
	t.Helper()
	return New(Config{
		FFmpegPath:  ffmpeg,
		FFprobePath: ffprobe,
		OutputDir:   t.TempDir(),
		Enabled:     true,
	})
}

func writeInput(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("input"), 0o644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	return path
}
