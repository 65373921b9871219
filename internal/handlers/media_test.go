package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"vclab/internal/database"
	"vclab/internal/media"
	"vclab/internal/transcoder"
)

var videoBytes = []byte("not really a video, the fake engine never reads it")

func TestResizeImage(t *testing.T) {
	env := newTestEnv(t)

	w := postFile(t, env.h.Resize, "/api/resize", "photo.png", pngBytes(t, 20, 10),
		map[string][]string{"scaleFactor": {"2"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp OutputResponse
	decodeBody(t, w, &resp)
	if !strings.HasSuffix(resp.OutputFile, ".resized-x2.png") {
		t.Errorf("outputFile = %q, want suffix .resized-x2.png", resp.OutputFile)
	}
	if resp.DownloadURL != "/api/outputs/"+resp.OutputFile {
		t.Errorf("downloadUrl = %q", resp.DownloadURL)
	}
	if _, err := os.Stat(filepath.Join(env.outputDir, resp.OutputFile)); err != nil {
		t.Errorf("output not written: %v", err)
	}
	if calls := env.videos.Calls(); len(calls) != 0 {
		t.Errorf("images must not reach the video engine, got calls %v", calls)
	}
	if left := dirEntries(t, env.uploadDir); len(left) != 0 {
		t.Errorf("upload directory not cleaned up: %v", left)
	}

	jobs := env.jobs.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("recorded %d jobs, want 1", len(jobs))
	}
	want := database.Job{
		ID:        1,
		Operation: "resize",
		Input:     "photo.png",
		Outputs:   []string{resp.OutputFile},
		Status:    database.StatusSuccess,
	}
	got := jobs[0]
	got.DurationMs, got.CreatedAt = 0, time.Time{}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("recorded job mismatch (-want +got):\n%s", diff)
	}
}

func TestResizeSameUploadTwice(t *testing.T) {
	env := newTestEnv(t)
	img := pngBytes(t, 20, 10)

	var outputs []string
	for _, factor := range []string{"2", "5"} {
		w := postFile(t, env.h.Resize, "/api/resize", "photo.png", img,
			map[string][]string{"scaleFactor": {factor}})
		if w.Code != http.StatusOK {
			t.Fatalf("scaleFactor %s: status = %d: %s", factor, w.Code, w.Body.String())
		}
		var resp OutputResponse
		decodeBody(t, w, &resp)
		outputs = append(outputs, resp.OutputFile)
	}

	if outputs[0] == outputs[1] {
		t.Fatalf("different scale factors share the output %q", outputs[0])
	}
	for _, name := range outputs {
		if _, err := os.Stat(filepath.Join(env.outputDir, name)); err != nil {
			t.Errorf("output %s missing: %v", name, err)
		}
	}
}

func TestResizeVideo(t *testing.T) {
	env := newTestEnv(t)

	w := postFile(t, env.h.Resize, "/api/resize", "clip.MP4", videoBytes,
		map[string][]string{"scaleFactor": {"4"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp OutputResponse
	decodeBody(t, w, &resp)
	if !strings.HasSuffix(resp.OutputFile, ".resized-x4.mp4") {
		t.Errorf("outputFile = %q, want suffix .resized-x4.mp4", resp.OutputFile)
	}
	if diff := cmp.Diff([]string{"resize"}, env.videos.Calls()); diff != "" {
		t.Errorf("video engine calls mismatch (-want +got):\n%s", diff)
	}
}

func TestResizeInvalidScaleFactor(t *testing.T) {
	env := newTestEnv(t)

	for _, factor := range []string{"", "zero", "0", "-2", "Inf", "+inf", "NaN"} {
		w := postFile(t, env.h.Resize, "/api/resize", "photo.png", pngBytes(t, 4, 4),
			map[string][]string{"scaleFactor": {factor}})
		if w.Code != http.StatusBadRequest {
			t.Errorf("scaleFactor %q: status = %d, want %d", factor, w.Code, http.StatusBadRequest)
		}
	}

	for _, factor := range []string{"Inf", "-Inf", "1e400"} {
		w := postFile(t, env.h.Resize, "/api/resize", "clip.mp4", videoBytes,
			map[string][]string{"scaleFactor": {factor}})
		if w.Code != http.StatusBadRequest {
			t.Errorf("video scaleFactor %q: status = %d, want %d", factor, w.Code, http.StatusBadRequest)
		}
	}
	if calls := env.videos.Calls(); len(calls) != 0 {
		t.Errorf("video engine called for invalid scale factors: %v", calls)
	}

	for _, job := range env.jobs.Jobs() {
		if job.Status != database.StatusError {
			t.Errorf("job %d status = %s, want error", job.ID, job.Status)
		}
	}
}

func TestColorToBWImage(t *testing.T) {
	env := newTestEnv(t)

	w := postFile(t, env.h.ColorToBW, "/api/color-to-bw", "photo.png", pngBytes(t, 8, 8), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp OutputResponse
	decodeBody(t, w, &resp)
	if !strings.HasSuffix(resp.OutputFile, ".bw.png") {
		t.Errorf("outputFile = %q, want suffix .bw.png", resp.OutputFile)
	}
}

func TestCompressImageQuality(t *testing.T) {
	env := newTestEnv(t)

	w := postFile(t, env.h.Compress, "/api/compress", "photo.png", pngBytes(t, 8, 8),
		map[string][]string{"quality": {"101"}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("quality 101: status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	w = postFile(t, env.h.Compress, "/api/compress", "photo.png", pngBytes(t, 8, 8),
		map[string][]string{"quality": {"40"}})
	if w.Code != http.StatusOK {
		t.Fatalf("quality 40: status = %d: %s", w.Code, w.Body.String())
	}
}

func TestCorruptImage(t *testing.T) {
	env := newTestEnv(t)

	w := postFile(t, env.h.ColorToBW, "/api/color-to-bw", "broken.jpg", []byte("definitely not a jpeg"), nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d: %s", w.Code, http.StatusBadRequest, w.Body.String())
	}
}

func TestUploadRejected(t *testing.T) {
	env := newTestEnv(t)
	env.h.maxUploadBytes = 1024

	tests := []struct {
		name     string
		handler  http.HandlerFunc
		filename string
		content  []byte
		want     int
	}{
		{"missing file", env.h.ColorToBW, "", nil, http.StatusBadRequest},
		{"empty file", env.h.ColorToBW, "empty.png", []byte{}, http.StatusBadRequest},
		{"too large", env.h.ColorToBW, "big.png", bytes.Repeat([]byte{1}, 64<<10), http.StatusRequestEntityTooLarge},
		{"unknown kind", env.h.ColorToBW, "notes.txt", []byte("hello"), http.StatusBadRequest},
		{"image to video-only", env.h.Chroma, "photo.png", []byte("png"), http.StatusBadRequest},
		{"video to image-only", env.h.ImageYUVStats, "clip.mp4", videoBytes, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postFile(t, tt.handler, "/api/upload", tt.filename, tt.content, nil)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}

	if left := dirEntries(t, env.uploadDir); len(left) != 0 {
		t.Errorf("upload directory not cleaned up: %v", left)
	}
}

func TestVideoOnlyOperations(t *testing.T) {
	tests := []struct {
		name     string
		call     func(h *Handlers) http.HandlerFunc
		fields   map[string][]string
		wantCall string
		wantExt  string
	}{
		{"chroma", func(h *Handlers) http.HandlerFunc { return h.Chroma }, map[string][]string{"subsampling": {"4:2:0"}}, "chroma", ".chroma.mp4"},
		{"motion vectors", func(h *Handlers) http.HandlerFunc { return h.MotionVectors }, nil, "motion_vectors", ".mv.mp4"},
		{"yuv histogram", func(h *Handlers) http.HandlerFunc { return h.YUVHistogram }, nil, "yuv_histogram", ".hist.mp4"},
		{"bbb default duration", func(h *Handlers) http.HandlerFunc { return h.BBBContainer }, nil, "package:20", ".bbb-20s.mp4"},
		{"bbb duration", func(h *Handlers) http.HandlerFunc { return h.BBBContainer }, map[string][]string{"duration": {"5"}}, "package:5", ".bbb-5s.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			w := postFile(t, tt.call(env.h), "/api/video", "clip.mp4", videoBytes, tt.fields)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", w.Code, w.Body.String())
			}
			var resp OutputResponse
			decodeBody(t, w, &resp)
			if !strings.HasSuffix(resp.OutputFile, tt.wantExt) {
				t.Errorf("outputFile = %q, want suffix %s", resp.OutputFile, tt.wantExt)
			}
			if diff := cmp.Diff([]string{tt.wantCall}, env.videos.Calls()); diff != "" {
				t.Errorf("video engine calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTranscodingDisabled(t *testing.T) {
	env := newTestEnv(t)
	env.videos.disabled = true

	handlers := map[string]http.HandlerFunc{
		"chroma":         env.h.Chroma,
		"motion vectors": env.h.MotionVectors,
		"yuv histogram":  env.h.YUVHistogram,
		"bbb":            env.h.BBBContainer,
	}
	for name, handler := range handlers {
		w := postFile(t, handler, "/api/video", "clip.mp4", videoBytes, nil)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want %d", name, w.Code, http.StatusServiceUnavailable)
		}
	}

	w := postFile(t, env.h.Convert, "/api/convert", "clip.mp4", videoBytes,
		map[string][]string{"codecs": {"vp9"}})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("convert: status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}

	if calls := env.videos.Calls(); len(calls) != 0 {
		t.Errorf("disabled engine was called: %v", calls)
	}
}

func TestDependencyFailure(t *testing.T) {
	env := newTestEnv(t)
	env.videos.err = &transcoder.DependencyError{
		Tool:   "ffmpeg",
		Op:     "motion_vectors",
		Stderr: "Unknown encoder 'libx264'",
		Err:    errors.New("exit status 1"),
	}

	w := postFile(t, env.h.MotionVectors, "/api/motion-vectors", "clip.mp4", videoBytes, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}

	var resp ErrorResponse
	decodeBody(t, w, &resp)
	if resp.Tool != "ffmpeg" {
		t.Errorf("tool = %q, want ffmpeg", resp.Tool)
	}
	if resp.Diagnostic != "Unknown encoder 'libx264'" {
		t.Errorf("diagnostic = %q", resp.Diagnostic)
	}

	jobs := env.jobs.Jobs()
	if len(jobs) != 1 || jobs[0].Status != database.StatusError || jobs[0].Error == "" {
		t.Errorf("recorded jobs = %+v, want one failed job with its error", jobs)
	}
}

func TestTranscodeTimeout(t *testing.T) {
	env := newTestEnv(t)
	env.h.transcodeTimeout = 20 * time.Millisecond
	env.videos.delay = time.Second

	w := postFile(t, env.h.YUVHistogram, "/api/yuv-histogram", "clip.mp4", videoBytes, nil)
	if w.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want %d", w.Code, http.StatusGatewayTimeout)
	}
}

func TestConvert(t *testing.T) {
	env := newTestEnv(t)

	w := postFile(t, env.h.Convert, "/api/convert", "clip.mp4", videoBytes,
		map[string][]string{"codecs": {"VP8, vp9", "av1"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp ConvertResponse
	decodeBody(t, w, &resp)
	if len(resp.ConvertedFiles) != 3 {
		t.Fatalf("convertedFiles = %+v, want 3 entries", resp.ConvertedFiles)
	}
	for i, suffix := range []string{".vp8.webm", ".vp9.webm", ".av1.mp4"} {
		if !strings.HasSuffix(resp.ConvertedFiles[i].OutputFile, suffix) {
			t.Errorf("convertedFiles[%d] = %q, want suffix %s", i, resp.ConvertedFiles[i].OutputFile, suffix)
		}
	}

	want := []string{"convert:av1", "convert:vp8", "convert:vp9"}
	if diff := cmp.Diff(want, env.videos.Calls()); diff != "" {
		t.Errorf("video engine calls mismatch (-want +got):\n%s", diff)
	}

	jobs := env.jobs.Jobs()
	if len(jobs) != 1 || len(jobs[0].Outputs) != 3 {
		t.Errorf("recorded jobs = %+v, want one job with 3 outputs", jobs)
	}
}

func TestConvertUnsupportedCodec(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		codecs []string
	}{
		{"unsupported", []string{"vp9", "mpeg2"}},
		{"none", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postFile(t, env.h.Convert, "/api/convert", "clip.mp4", videoBytes,
				map[string][]string{"codecs": tt.codecs})
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}

	if calls := env.videos.Calls(); len(calls) != 0 {
		t.Errorf("no conversion should start for an invalid request, got %v", calls)
	}
}

func TestVideoInfo(t *testing.T) {
	env := newTestEnv(t)
	env.videos.info = &transcoder.VideoInfo{
		Codec: "h264", Width: 1920, Height: 1080, Duration: 10.5, BitRate: 2500000, FrameRate: 30,
	}

	w := postFile(t, env.h.VideoInfo, "/api/video-info", "clip.mp4", videoBytes, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var got transcoder.VideoInfo
	decodeBody(t, w, &got)
	if diff := cmp.Diff(*env.videos.info, got); diff != "" {
		t.Errorf("video info mismatch (-want +got):\n%s", diff)
	}
}

func TestTracks(t *testing.T) {
	env := newTestEnv(t)
	env.videos.tracks = &transcoder.TrackCounts{
		Counts: map[string]int{"video": 1, "audio": 3},
		Total:  4,
	}

	for _, name := range []string{"bbb.mp4", "song.mp3"} {
		w := postFile(t, env.h.Tracks, "/api/tracks", name, videoBytes, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d: %s", name, w.Code, w.Body.String())
		}
		var got transcoder.TrackCounts
		decodeBody(t, w, &got)
		if diff := cmp.Diff(*env.videos.tracks, got); diff != "" {
			t.Errorf("%s: track counts mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestImageYUVStats(t *testing.T) {
	env := newTestEnv(t)

	w := postFile(t, env.h.ImageYUVStats, "/api/image/yuv-stats", "photo.png", pngBytes(t, 6, 4), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var got media.YUVStats
	decodeBody(t, w, &got)
	if got.Width != 6 || got.Height != 4 {
		t.Errorf("size = %dx%d, want 6x4", got.Width, got.Height)
	}
	if got.Y.Min > got.Y.Mean || got.Y.Mean > got.Y.Max {
		t.Errorf("Y stats out of order: %+v", got.Y)
	}
}

func TestFormList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"vp8", []string{"vp8"}},
		{" vp8 , ,h265,", []string{"vp8", "h265"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, splitList(tt.in)); diff != "" {
			t.Errorf("splitList(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestIdenticalUploadsShareHashedName(t *testing.T) {
	env := newTestEnv(t)
	content := pngBytes(t, 4, 4)

	var outputs []string
	for i := 0; i < 2; i++ {
		w := postFile(t, env.h.ColorToBW, "/api/color-to-bw", "photo.png", content, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		var resp OutputResponse
		decodeBody(t, w, &resp)
		outputs = append(outputs, resp.OutputFile)
	}
	if outputs[0] != outputs[1] {
		t.Errorf("identical uploads produced %q and %q, want the same content-addressed name", outputs[0], outputs[1])
	}
	if len(strings.TrimSuffix(outputs[0], ".bw.png")) != 64 {
		t.Errorf("output %q is not named after a blake2b-256 hex digest", outputs[0])
	}
}
