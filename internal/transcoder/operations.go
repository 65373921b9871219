package transcoder

import (
	"context"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"vclab/internal/numeric"
)

// Codec is a target of Convert: an ffmpeg encoder and the container it is
// written in.
type Codec struct {
	Encoder   string
	Container string
}

// Codecs lists the conversion targets by name.
var Codecs = map[string]Codec{
	"vp8":  {Encoder: "libvpx", Container: "webm"},
	"vp9":  {Encoder: "libvpx-vp9", Container: "webm"},
	"h265": {Encoder: "libx265", Container: "mp4"},
	"av1":  {Encoder: "libaom-av1", Container: "mp4"},
}

// Subsamplings maps a J:a:b chroma subsampling scheme to its pixel format.
var Subsamplings = map[string]string{
	"4:4:4": "yuv444p",
	"4:2:2": "yuv422p",
	"4:2:0": "yuv420p",
}

// ParseCodecs lower-cases and validates codec names. All unsupported names
// are reported together.
func ParseCodecs(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, numeric.InvalidInputf("no codecs requested (supported: %s)", supportedCodecs())
	}
	var valid, invalid []string
	for _, name := range names {
		codec := strings.ToLower(strings.TrimSpace(name))
		if _, ok := Codecs[codec]; ok {
			valid = append(valid, codec)
		} else {
			invalid = append(invalid, name)
		}
	}
	if len(invalid) > 0 {
		return nil, numeric.InvalidInputf("unsupported codecs: %s (supported: %s)",
			strings.Join(invalid, ", "), supportedCodecs())
	}
	return valid, nil
}

func supportedCodecs() string {
	names := make([]string, 0, len(Codecs))
	for name := range Codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Resize scales input down by factor in both dimensions.
func (t *Transcoder) Resize(ctx context.Context, input string, factor float64) (string, error) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return "", numeric.InvalidInputf("scale factor must be a positive finite number, got %v", factor)
	}
	f := formatFloat(factor)
	output := t.outputFile(input, "resized-x"+f, filepath.Ext(input))
	err := t.ffmpegRun(ctx, "resize",
		"-i", input,
		"-vf", "scale=iw/"+f+":ih/"+f,
		output,
	)
	return output, err
}

// Grayscale converts input to a single gray channel.
func (t *Transcoder) Grayscale(ctx context.Context, input string) (string, error) {
	output := t.outputFile(input, "bw", filepath.Ext(input))
	err := t.ffmpegRun(ctx, "grayscale", "-i", input, "-vf", "format=gray", output)
	return output, err
}

// Compress re-encodes input at the encoder's highest compression level.
func (t *Transcoder) Compress(ctx context.Context, input string) (string, error) {
	output := t.outputFile(input, "compressed", filepath.Ext(input))
	err := t.ffmpegRun(ctx, "compress", "-i", input, "-compression_level", "10", output)
	return output, err
}

// ChromaSubsample re-encodes input to H.264/AAC in MP4 with the pixel
// format of the given subsampling scheme.
func (t *Transcoder) ChromaSubsample(ctx context.Context, input, subsampling string) (string, error) {
	pixFmt, ok := Subsamplings[subsampling]
	if !ok {
		return "", numeric.InvalidInputf("invalid chroma subsampling %q (supported: 4:4:4, 4:2:2, 4:2:0)", subsampling)
	}
	output := t.outputFile(input, pixFmt, ".mp4")
	err := t.ffmpegRun(ctx, "chroma",
		"-i", input,
		"-pix_fmt", pixFmt,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-f", "mp4",
		output,
	)
	return output, err
}

// Convert re-encodes input with one of Codecs.
func (t *Transcoder) Convert(ctx context.Context, input, codec string) (string, error) {
	target, ok := Codecs[codec]
	if !ok {
		return "", numeric.InvalidInputf("unsupported codec %q (supported: %s)", codec, supportedCodecs())
	}
	output := t.outputFile(input, codec, "."+target.Container)
	err := t.ffmpegRun(ctx, "convert",
		"-i", input,
		"-c:v", target.Encoder,
		"-f", target.Container,
		output,
	)
	return output, err
}

// MotionVectors overlays the decoder's motion vectors and QP values.
func (t *Transcoder) MotionVectors(ctx context.Context, input string) (string, error) {
	output := t.outputFile(input, "motion-vectors", ".mp4")
	err := t.ffmpegRun(ctx, "motion_vectors",
		"-flags2", "+export_mvs",
		"-i", input,
		"-vf", "codecview=mv=1:qp=1",
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "18",
		output,
	)
	return output, err
}

// YUVHistogram overlays a per-frame Y, U and V histogram.
func (t *Transcoder) YUVHistogram(ctx context.Context, input string) (string, error) {
	output := t.outputFile(input, "yuv-histogram", ".mp4")
	err := t.ffmpegRun(ctx, "yuv_histogram",
		"-i", input,
		"-vf", "format=yuv444p,histogram",
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "18",
		output,
	)
	return output, err
}
