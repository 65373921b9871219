package handlers

import (
	"context"
	"sync/atomic"
	"time"

	"vclab/internal/database"
	"vclab/internal/startup"
	"vclab/internal/streaming"
	"vclab/internal/transcoder"
)

// VideoEngine runs ffmpeg and ffprobe jobs. *transcoder.Transcoder
// implements it.
type VideoEngine interface {
	IsEnabled() bool
	Running() int
	Resize(ctx context.Context, input string, factor float64) (string, error)
	Grayscale(ctx context.Context, input string) (string, error)
	Compress(ctx context.Context, input string) (string, error)
	ChromaSubsample(ctx context.Context, input, subsampling string) (string, error)
	Convert(ctx context.Context, input, codec string) (string, error)
	BBBContainer(ctx context.Context, input string, seconds int) (string, error)
	MotionVectors(ctx context.Context, input string) (string, error)
	YUVHistogram(ctx context.Context, input string) (string, error)
	VideoInfo(ctx context.Context, input string) (*transcoder.VideoInfo, error)
	Tracks(ctx context.Context, input string) (*transcoder.TrackCounts, error)
	OutputPath(name string) (string, error)
	ClearOutputs() (int64, error)
}

// ImageEngine processes still images in-process. *media.Processor
// implements it.
type ImageEngine interface {
	Resize(src string, factor float64) (string, error)
	Grayscale(src string) (string, error)
	Compress(src string, quality int) (string, error)
}

// JobStore records the job history. *database.Database implements it.
type JobStore interface {
	RecordJob(ctx context.Context, job *database.Job) error
	ListJobs(ctx context.Context, limit int) ([]database.Job, error)
	CountJobs(ctx context.Context) (int, error)
}

type Handlers struct {
	videos           VideoEngine
	images           ImageEngine
	jobs             JobStore
	uploadDir        string
	maxUploadBytes   int64
	transcodeTimeout time.Duration
	stream           streaming.Config
	startTime        time.Time
	ready            atomic.Bool
}

// New wires the handlers. jobs may be nil, in which case nothing is
// recorded and the job listing is empty.
func New(videos VideoEngine, images ImageEngine, jobs JobStore, config *startup.Config) *Handlers {
	return &Handlers{
		videos:           videos,
		images:           images,
		jobs:             jobs,
		uploadDir:        config.UploadDir,
		maxUploadBytes:   config.MaxUploadBytes,
		transcodeTimeout: config.TranscodeTimeout,
		stream:           streaming.DefaultConfig(),
		startTime:        time.Now(),
	}
}

// SetReady flips the readiness probe. The server marks itself ready once
// listening and not ready when shutdown begins.
func (h *Handlers) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports the readiness state.
func (h *Handlers) IsReady() bool {
	return h.ready.Load()
}
