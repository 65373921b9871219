package transcoder

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"vclab/internal/numeric"
)

// ProbeResult is the subset of `ffprobe -show_format -show_streams` output
// that vclab reads.
type ProbeResult struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes one stream of a container.
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	PixFmt       string `json:"pix_fmt,omitempty"`
	AvgFrameRate string `json:"avg_frame_rate,omitempty"`
	Channels     int    `json:"channels,omitempty"`
}

// Format describes the container.
type Format struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
	Size       string `json:"size"`
}

// VideoInfo is the summary returned by the video-info endpoint.
type VideoInfo struct {
	Codec     string  `json:"codec"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Duration  float64 `json:"duration"`
	BitRate   int64   `json:"bitRate"`
	FrameRate float64 `json:"frameRate"`
}

// TrackCounts counts the streams of a container by codec type.
type TrackCounts struct {
	Counts map[string]int `json:"trackCounts"`
	Total  int            `json:"totalTracks"`
}

// trackTypes are the codec types counted individually; anything else is
// counted as "unknown".
var trackTypes = []string{"video", "audio", "subtitle", "data"}

// Probe runs ffprobe on input and decodes its JSON report.
func (t *Transcoder) Probe(ctx context.Context, input string) (*ProbeResult, error) {
	out, err := t.run(ctx, "probe", t.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		input,
	)
	if err != nil {
		return nil, err
	}

	var result ProbeResult
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, &DependencyError{Tool: "ffprobe", Op: "probe", Err: fmt.Errorf("decoding report: %w", err)}
	}
	return &result, nil
}

// VideoInfo returns codec, dimensions, duration, bit rate and frame rate of
// the first video stream of input.
func (t *Transcoder) VideoInfo(ctx context.Context, input string) (*VideoInfo, error) {
	probe, err := t.Probe(ctx, input)
	if err != nil {
		return nil, err
	}

	var video *Stream
	for i := range probe.Streams {
		if probe.Streams[i].CodecType == "video" {
			video = &probe.Streams[i]
			break
		}
	}
	if video == nil {
		return nil, numeric.InvalidInputf("no video stream found")
	}

	info := &VideoInfo{
		Codec:     video.CodecName,
		Width:     video.Width,
		Height:    video.Height,
		FrameRate: parseRate(video.AvgFrameRate),
	}
	info.Duration, _ = strconv.ParseFloat(probe.Format.Duration, 64)
	info.BitRate, _ = strconv.ParseInt(probe.Format.BitRate, 10, 64)
	return info, nil
}

// Tracks counts the streams of input by codec type.
func (t *Transcoder) Tracks(ctx context.Context, input string) (*TrackCounts, error) {
	probe, err := t.Probe(ctx, input)
	if err != nil {
		return nil, err
	}
	return countTracks(probe.Streams), nil
}

func countTracks(streams []Stream) *TrackCounts {
	counts := map[string]int{"unknown": 0}
	for _, kind := range trackTypes {
		counts[kind] = 0
	}
	for _, s := range streams {
		if _, ok := counts[s.CodecType]; ok && s.CodecType != "unknown" {
			counts[s.CodecType]++
		} else {
			counts["unknown"]++
		}
	}
	return &TrackCounts{Counts: counts, Total: len(streams)}
}

// parseRate parses an ffprobe rational such as "30000/1001". Malformed
// rates and a zero denominator yield 0.
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
