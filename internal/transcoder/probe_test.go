package transcoder

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"vclab/internal/numeric"
)

func TestVideoInfo(t *testing.T) {
	trans := newTestTranscoder(t, "", fakeFFprobe(t, probeReport))

	info, err := trans.VideoInfo(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("VideoInfo() unexpected error: %v", err)
	}

	want := &VideoInfo{
		Codec:     "h264",
		Width:     1280,
		Height:    720,
		Duration:  20.02,
		BitRate:   1500000,
		FrameRate: 30000.0 / 1001.0,
	}
	if diff := cmp.Diff(want, info); diff != "" {
		t.Errorf("VideoInfo() mismatch (-want +got):\n%s", diff)
	}
}

func TestVideoInfoWithoutVideoStream(t *testing.T) {
	audioOnly := `{"streams": [{"index": 0, "codec_name": "mp3", "codec_type": "audio"}], "format": {"duration": "3.5"}}`
	trans := newTestTranscoder(t, "", fakeFFprobe(t, audioOnly))

	_, err := trans.VideoInfo(context.Background(), "song.mp3")
	if !errors.Is(err, numeric.ErrInvalidInput) {
		t.Errorf("VideoInfo() error = %v, want ErrInvalidInput", err)
	}
}

func TestTracks(t *testing.T) {
	trans := newTestTranscoder(t, "", fakeFFprobe(t, probeReport))

	got, err := trans.Tracks(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("Tracks() unexpected error: %v", err)
	}

	want := &TrackCounts{
		Counts: map[string]int{"video": 1, "audio": 1, "subtitle": 1, "data": 0, "unknown": 1},
		Total:  4,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tracks() mismatch (-want +got):\n%s", diff)
	}
}

func TestProbeFailures(t *testing.T) {
	t.Run("ffprobe error carries stderr", func(t *testing.T) {
		trans := newTestTranscoder(t, "", fakeFFprobe(t, probeReport))

		_, err := trans.Probe(context.Background(), "corrupt.mp4")
		var depErr *DependencyError
		if !errors.As(err, &depErr) {
			t.Fatalf("Probe() error = %v, want *DependencyError", err)
		}
		if depErr.Tool != "ffprobe" || depErr.Stderr != "moov atom not found" {
			t.Errorf("DependencyError = %+v", depErr)
		}
	})

	t.Run("malformed report", func(t *testing.T) {
		trans := newTestTranscoder(t, "", fakeFFprobe(t, "not json"))

		_, err := trans.Probe(context.Background(), "clip.mp4")
		if !errors.Is(err, ErrDependencyFailure) {
			t.Errorf("Probe() error = %v, want ErrDependencyFailure", err)
		}
	})
}

func TestCountTracks(t *testing.T) {
	got := countTracks([]Stream{
		{CodecType: "video"},
		{CodecType: "audio"},
		{CodecType: "audio"},
		{CodecType: "data"},
		{CodecType: ""},
		{CodecType: "unknown"},
	})

	want := map[string]int{"video": 1, "audio": 2, "subtitle": 0, "data": 1, "unknown": 2}
	if diff := cmp.Diff(want, got.Counts); diff != "" {
		t.Errorf("countTracks() mismatch (-want +got):\n%s", diff)
	}
	if got.Total != 6 {
		t.Errorf("Total = %d, want 6", got.Total)
	}

	empty := countTracks(nil)
	if empty.Total != 0 || len(empty.Counts) != 5 {
		t.Errorf("countTracks(nil) = %+v", empty)
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"25/1", 25},
		{"30000/1001", 30000.0 / 1001.0},
		{"24", 24},
		{"0/0", 0},
		{"", 0},
		{"abc/1", 0},
		{"25/x", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseRate(tt.in); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("parseRate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
