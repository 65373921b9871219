package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"vclab/internal/media"
	"vclab/internal/transcoder"
	"vclab/internal/workers"
)

// OutputResponse names a produced file and where to fetch it.
type OutputResponse struct {
	OutputFile  string `json:"outputFile"`
	DownloadURL string `json:"downloadUrl"`
}

// ConvertResponse lists one output per requested codec, in request order.
type ConvertResponse struct {
	ConvertedFiles []OutputResponse `json:"convertedFiles"`
}

func outputResponse(path string) OutputResponse {
	name := filepath.Base(path)
	return OutputResponse{OutputFile: name, DownloadURL: "/api/outputs/" + name}
}

// mediaJob is one upload-driven operation. run receives the staged upload
// and returns the paths it produced.
type mediaJob struct {
	operation string
	accepts   []media.FileType
	run       func(ctx context.Context, up *upload) ([]string, error)
}

func (j mediaJob) accepted(kind media.FileType) bool {
	for _, k := range j.accepts {
		if k == kind {
			return true
		}
	}
	return false
}

// serveMediaJob receives the upload, runs the job under the transcode
// timeout, records it and removes the upload. respond writes the success
// body from the produced paths.
func (h *Handlers) serveMediaJob(w http.ResponseWriter, r *http.Request, job mediaJob, respond func([]string)) {
	start := time.Now()

	up, err := h.receiveUpload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer up.Remove()

	if !job.accepted(up.Kind) {
		err = badRequestf("%s does not accept %s files (%s)", job.operation, up.Kind, up.Name)
		h.record(r, job.operation, up.Name, nil, start, err)
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.transcodeTimeout)
	defer cancel()

	outputs, err := job.run(ctx, up)
	names := make([]string, len(outputs))
	for i, p := range outputs {
		names[i] = filepath.Base(p)
	}
	h.record(r, job.operation, up.Name, names, start, err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(outputs)
}

func respondOutput(w http.ResponseWriter) func([]string) {
	return func(paths []string) {
		respondJSON(w, http.StatusOK, outputResponse(paths[0]))
	}
}

func single(path string, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func (h *Handlers) requireTranscoding() error {
	if !h.videos.IsEnabled() {
		return transcoder.ErrDisabled
	}
	return nil
}

func parseScaleFactor(r *http.Request) (float64, error) {
	raw := strings.TrimSpace(r.FormValue("scaleFactor"))
	if raw == "" {
		return 0, badRequestf("scaleFactor is required")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || !(f > 0) || math.IsInf(f, 0) {
		return 0, badRequestf("scaleFactor must be a positive finite number, got %q", raw)
	}
	return f, nil
}

func parseOptionalInt(r *http.Request, field string) (int, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequestf("%s must be an integer, got %q", field, raw)
	}
	return n, nil
}

var imageOrVideo = []media.FileType{media.FileTypeImage, media.FileTypeVideo}

// Resize shrinks an image in-process or a video with ffmpeg.
// POST /api/resize (multipart: file, scaleFactor)
func (h *Handlers) Resize(w http.ResponseWriter, r *http.Request) {
	h.serveMediaJob(w, r, mediaJob{
		operation: "resize",
		accepts:   imageOrVideo,
		run: func(ctx context.Context, up *upload) ([]string, error) {
			factor, err := parseScaleFactor(r)
			if err != nil {
				return nil, err
			}
			if up.Kind == media.FileTypeImage {
				return single(h.images.Resize(up.Path, factor))
			}
			return single(h.videos.Resize(ctx, up.Path, factor))
		},
	}, respondOutput(w))
}

// ColorToBW drops the chroma of an image or video.
// POST /api/color-to-bw (multipart: file)
func (h *Handlers) ColorToBW(w http.ResponseWriter, r *http.Request) {
	h.serveMediaJob(w, r, mediaJob{
		operation: "grayscale",
		accepts:   imageOrVideo,
		run: func(ctx context.Context, up *upload) ([]string, error) {
			if up.Kind == media.FileTypeImage {
				return single(h.images.Grayscale(up.Path))
			}
			return single(h.videos.Grayscale(ctx, up.Path))
		},
	}, respondOutput(w))
}

// Compress re-encodes an image as JPEG (PNG stays PNG) or a video with the
// highest ffmpeg compression level.
// POST /api/compress (multipart: file, quality)
func (h *Handlers) Compress(w http.ResponseWriter, r *http.Request) {
	h.serveMediaJob(w, r, mediaJob{
		operation: "compress",
		accepts:   imageOrVideo,
		run: func(ctx context.Context, up *upload) ([]string, error) {
			if up.Kind == media.FileTypeImage {
				quality, err := parseOptionalInt(r, "quality")
				if err != nil {
					return nil, err
				}
				return single(h.images.Compress(up.Path, quality))
			}
			return single(h.videos.Compress(ctx, up.Path))
		},
	}, respondOutput(w))
}

// Chroma re-encodes a video with the requested chroma subsampling.
// POST /api/chroma (multipart: file, subsampling)
func (h *Handlers) Chroma(w http.ResponseWriter, r *http.Request) {
	h.serveMediaJob(w, r, mediaJob{
		operation: "chroma",
		accepts:   []media.FileType{media.FileTypeVideo},
		run: func(ctx context.Context, up *upload) ([]string, error) {
			if err := h.requireTranscoding(); err != nil {
				return nil, err
			}
			return single(h.videos.ChromaSubsample(ctx, up.Path, strings.TrimSpace(r.FormValue("subsampling"))))
		},
	}, respondOutput(w))
}

// VideoInfo reports codec, size, duration, bit rate and frame rate.
// POST /api/video-info (multipart: file)
func (h *Handlers) VideoInfo(w http.ResponseWriter, r *http.Request) {
	var info *transcoder.VideoInfo
	h.serveMediaJob(w, r, mediaJob{
		operation: "probe",
		accepts:   []media.FileType{media.FileTypeVideo},
		run: func(ctx context.Context, up *upload) ([]string, error) {
			var err error
			info, err = h.videos.VideoInfo(ctx, up.Path)
			return nil, err
		},
	}, func([]string) {
		respondJSON(w, http.StatusOK, info)
	})
}

// Tracks counts the streams of a container by type.
// POST /api/tracks (multipart: file)
func (h *Handlers) Tracks(w http.ResponseWriter, r *http.Request) {
	var counts *transcoder.TrackCounts
	h.serveMediaJob(w, r, mediaJob{
		operation: "tracks",
		accepts:   []media.FileType{media.FileTypeVideo, media.FileTypeAudio},
		run: func(ctx context.Context, up *upload) ([]string, error) {
			var err error
			counts, err = h.videos.Tracks(ctx, up.Path)
			return nil, err
		},
	}, func([]string) {
		respondJSON(w, http.StatusOK, counts)
	})
}

// Convert re-encodes a video once per requested codec. Conversions run
// concurrently on a bounded pool.
// POST /api/convert (multipart: file, codecs repeated or comma-separated)
func (h *Handlers) Convert(w http.ResponseWriter, r *http.Request) {
	h.serveMediaJob(w, r, mediaJob{
		operation: "convert",
		accepts:   []media.FileType{media.FileTypeVideo},
		run: func(ctx context.Context, up *upload) ([]string, error) {
			codecs, err := transcoder.ParseCodecs(formList(r, "codecs"))
			if err != nil {
				return nil, err
			}
			if err := h.requireTranscoding(); err != nil {
				return nil, err
			}
			return h.convertAll(ctx, up.Path, codecs)
		},
	}, func(paths []string) {
		resp := ConvertResponse{ConvertedFiles: make([]OutputResponse, len(paths))}
		for i, p := range paths {
			resp.ConvertedFiles[i] = outputResponse(p)
		}
		respondJSON(w, http.StatusOK, resp)
	})
}

func (h *Handlers) convertAll(ctx context.Context, input string, codecs []string) ([]string, error) {
	outputs := make([]string, len(codecs))
	errs := make([]error, len(codecs))
	sem := make(chan struct{}, workers.ForMixed(len(codecs)))

	var wg sync.WaitGroup
	for i, codec := range codecs {
		i, codec := i, codec
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outputs[i], errs[i] = h.videos.Convert(ctx, input, codec)
		}()
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return outputs, nil
}

// formList collects a repeated form field, also splitting comma-separated
// values.
func formList(r *http.Request, field string) []string {
	var out []string
	if r.MultipartForm != nil {
		for _, v := range r.MultipartForm.Value[field] {
			out = append(out, splitList(v)...)
		}
	}
	if len(out) == 0 {
		out = splitList(r.FormValue(field))
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// BBBContainer trims a clip and packages it with AAC, MP3 and AC3 tracks.
// POST /api/bbb-container (multipart: file, duration)
func (h *Handlers) BBBContainer(w http.ResponseWriter, r *http.Request) {
	h.serveMediaJob(w, r, mediaJob{
		operation: "package",
		accepts:   []media.FileType{media.FileTypeVideo},
		run: func(ctx context.Context, up *upload) ([]string, error) {
			seconds, err := parseOptionalInt(r, "duration")
			if err != nil {
				return nil, err
			}
			if seconds == 0 {
				seconds = transcoder.DefaultTrimSeconds
			}
			if seconds < 0 {
				return nil, badRequestf("duration must be positive, got %d", seconds)
			}
			if err := h.requireTranscoding(); err != nil {
				return nil, err
			}
			return single(h.videos.BBBContainer(ctx, up.Path, seconds))
		},
	}, respondOutput(w))
}

// MotionVectors overlays the decoder's motion vectors on the video.
// POST /api/motion-vectors (multipart: file)
func (h *Handlers) MotionVectors(w http.ResponseWriter, r *http.Request) {
	h.serveMediaJob(w, r, mediaJob{
		operation: "motion_vectors",
		accepts:   []media.FileType{media.FileTypeVideo},
		run: func(ctx context.Context, up *upload) ([]string, error) {
			if err := h.requireTranscoding(); err != nil {
				return nil, err
			}
			return single(h.videos.MotionVectors(ctx, up.Path))
		},
	}, respondOutput(w))
}

// YUVHistogram renders the per-plane YUV histogram over the video.
// POST /api/yuv-histogram (multipart: file)
func (h *Handlers) YUVHistogram(w http.ResponseWriter, r *http.Request) {
	h.serveMediaJob(w, r, mediaJob{
		operation: "yuv_histogram",
		accepts:   []media.FileType{media.FileTypeVideo},
		run: func(ctx context.Context, up *upload) ([]string, error) {
			if err := h.requireTranscoding(); err != nil {
				return nil, err
			}
			return single(h.videos.YUVHistogram(ctx, up.Path))
		},
	}, respondOutput(w))
}

// ImageYUVStats converts every pixel of an image to YUV and reports
// min, mean and max per plane.
// POST /api/image/yuv-stats (multipart: file)
func (h *Handlers) ImageYUVStats(w http.ResponseWriter, r *http.Request) {
	var stats *media.YUVStats
	h.serveMediaJob(w, r, mediaJob{
		operation: "yuv_stats",
		accepts:   []media.FileType{media.FileTypeImage},
		run: func(_ context.Context, up *upload) ([]string, error) {
			var err error
			stats, err = media.ImageYUVStats(up.Path)
			return nil, err
		},
	}, func([]string) {
		respondJSON(w, http.StatusOK, stats)
	})
}
