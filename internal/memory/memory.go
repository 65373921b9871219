package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"vclab/internal/logging"
	"vclab/internal/metrics"
)

// DefaultRatio is the share of the container limit given to the Go heap.
// The remainder is left to ffmpeg child processes and libvips allocations,
// neither of which the Go runtime can see.
const DefaultRatio = 0.75

// Source names where a memory limit came from.
type Source string

const (
	SourceNone       Source = "none"
	SourceGoMemLimit Source = "GOMEMLIMIT"
	SourceContainer  Source = "MEMORY_LIMIT"
)

// Plan is a resolved memory configuration.
type Plan struct {
	Source Source

	// ContainerLimit is the raw MEMORY_LIMIT value in bytes (0 if unset).
	ContainerLimit int64

	// Ratio applied to ContainerLimit (0 unless Source is SourceContainer).
	Ratio float64

	// Limit is the soft limit for the Go runtime in bytes (0 if none).
	Limit int64
}

// Resolve computes a Plan from environment lookups without touching the
// runtime. An explicit GOMEMLIMIT wins; the runtime has already parsed it,
// so Limit stays 0 and Apply only reports it.
func Resolve(getenv func(string) string) Plan {
	if getenv("GOMEMLIMIT") != "" {
		return Plan{Source: SourceGoMemLimit}
	}

	raw := getenv("MEMORY_LIMIT")
	if raw == "" {
		return Plan{Source: SourceNone}
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit <= 0 {
		logging.Warn("Ignoring MEMORY_LIMIT %q: not a positive byte count", raw)
		return Plan{Source: SourceNone}
	}

	ratio := DefaultRatio
	if s := getenv("MEMORY_RATIO"); s != "" {
		r, err := strconv.ParseFloat(s, 64)
		switch {
		case err != nil:
			logging.Warn("Failed to parse MEMORY_RATIO %q: %v, using %.2f", s, err, DefaultRatio)
		case r <= 0 || r > 1:
			logging.Warn("MEMORY_RATIO %q out of range (0.0-1.0], using %.2f", s, DefaultRatio)
		default:
			ratio = r
		}
	}

	return Plan{
		Source:         SourceContainer,
		ContainerLimit: limit,
		Ratio:          ratio,
		Limit:          int64(float64(limit) * ratio),
	}
}

// Apply sets the runtime soft limit described by p and returns the limit
// now in effect (0 when the runtime has none).
func Apply(p Plan) int64 {
	if p.Source == SourceContainer && p.Limit > 0 {
		debug.SetMemoryLimit(p.Limit)
		logging.Info("Configured GOMEMLIMIT: %s (%.0f%% of %s container limit)",
			formatBytes(p.Limit), p.Ratio*100, formatBytes(p.ContainerLimit))
	}

	effective := debug.SetMemoryLimit(-1)
	if effective == math.MaxInt64 {
		effective = 0
	}

	switch p.Source {
	case SourceGoMemLimit:
		logging.Info("GOMEMLIMIT set via environment: %s", formatBytes(effective))
	case SourceNone:
		logging.Debug("MEMORY_LIMIT not set, Go runtime memory limit left unconfigured")
	}

	metrics.GoMemoryLimitBytes.Set(float64(effective))
	return effective
}

// ConfigureFromEnv resolves and applies the memory limit from the process
// environment. Call it before the first large allocation.
func ConfigureFromEnv() Plan {
	p := Resolve(os.Getenv)
	Apply(p)
	return p
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
