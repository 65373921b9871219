// Package transcoder wraps the external ffmpeg and ffprobe binaries.
//
// It supports:
//   - Stream inspection (codec, resolution, duration, bit rate, frame rate, track counts)
//   - Scaling, grayscale conversion and re-compression of images and videos
//   - Chroma subsampling changes and codec conversion (VP8, VP9, H.265, AV1)
//   - The trim / audio export / repackage pipeline that builds the BBB container
//   - Motion vector and YUV histogram visualisations
//
// Every ffmpeg or ffprobe failure is returned as a *DependencyError that
// carries the tool's stderr and matches ErrDependencyFailure under
// errors.Is. Outputs are written to a single output directory and are
// referred to by base name.
package transcoder
