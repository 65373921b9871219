package transcoder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"vclab/internal/logging"
	"vclab/internal/numeric"
)

// DefaultTrimSeconds is the clip length used by BBBContainer.
const DefaultTrimSeconds = 20

// AudioTracks holds the three audio exports of a clip.
type AudioTracks struct {
	AAC string // mono AAC
	MP3 string // stereo MP3, 128 kb/s
	AC3 string // AC-3
}

// Paths returns the tracks in packaging order.
func (a AudioTracks) Paths() []string {
	return []string{a.AAC, a.MP3, a.AC3}
}

// Trim keeps the first seconds of input without re-encoding.
func (t *Transcoder) Trim(ctx context.Context, input string, seconds int) (string, error) {
	if seconds < 1 {
		return "", numeric.InvalidInputf("trim duration must be at least 1 second, got %d", seconds)
	}
	output := t.outputFile(input, "trimmed-"+strconv.Itoa(seconds)+"s", filepath.Ext(input))
	err := t.ffmpegRun(ctx, "trim",
		"-t", strconv.Itoa(seconds),
		"-i", input,
		"-c:v", "copy",
		"-c:a", "copy",
		output,
	)
	return output, err
}

// ExportAudio writes the audio of input as mono AAC, stereo 128k MP3 and
// AC-3. Partial exports are removed when a later export fails.
func (t *Transcoder) ExportAudio(ctx context.Context, input string) (AudioTracks, error) {
	tracks := AudioTracks{
		AAC: t.outputFile(input, "aac", ".m4a"),
		MP3: t.outputFile(input, "mp3", ".mp3"),
		AC3: t.outputFile(input, "ac3", ".ac3"),
	}

	steps := [][]string{
		{"-i", input, "-vn", "-c:a", "aac", "-ac", "1", tracks.AAC},
		{"-i", input, "-vn", "-c:a", "libmp3lame", "-ac", "2", "-b:a", "128k", tracks.MP3},
		{"-i", input, "-vn", "-c:a", "ac3", tracks.AC3},
	}
	for i, args := range steps {
		if err := t.ffmpegRun(ctx, "export_audio", args...); err != nil {
			removeAll(tracks.Paths()[:i+1])
			return AudioTracks{}, err
		}
	}
	return tracks, nil
}

// Package muxes the video stream of video with every audio input into one
// MP4. Video is copied and audio is encoded to AAC.
func (t *Transcoder) Package(ctx context.Context, video string, audio []string, output string) error {
	args := []string{"-i", video}
	for _, a := range audio {
		args = append(args, "-i", a)
	}
	args = append(args, "-map", "0:v")
	for i := range audio {
		args = append(args, "-map", fmt.Sprintf("%d:a", i+1))
	}
	args = append(args, "-c:v", "copy", "-c:a", "aac", "-f", "mp4", output)
	return t.ffmpegRun(ctx, "package", args...)
}

// BBBContainer trims input to seconds, exports its audio in three formats
// and packages the clip with all three tracks into one MP4. Intermediate
// files are removed whatever the outcome.
func (t *Transcoder) BBBContainer(ctx context.Context, input string, seconds int) (string, error) {
	trimmed, err := t.Trim(ctx, input, seconds)
	if err != nil {
		removeAll([]string{trimmed})
		return "", err
	}
	defer removeAll([]string{trimmed})

	tracks, err := t.ExportAudio(ctx, trimmed)
	if err != nil {
		return "", err
	}
	defer removeAll(tracks.Paths())

	output := t.outputFile(input, "bbb-"+strconv.Itoa(seconds)+"s", ".mp4")
	if err := t.Package(ctx, trimmed, tracks.Paths(), output); err != nil {
		removeAll([]string{output})
		return "", err
	}
	return output, nil
}

func removeAll(paths []string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logging.Warn("failed to remove intermediate %s: %v", p, err)
		}
	}
}
