package transcoder

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDependencyFailure matches every failure of an external tool.
	ErrDependencyFailure = errors.New("dependency failure")

	// ErrDisabled is returned for operations that write outputs when the
	// output directory is not writable.
	ErrDisabled = errors.New("transcoding disabled (output directory not writable)")
)

// maxStderr bounds the diagnostic kept from a failed run.
const maxStderr = 4096

// DependencyError reports a failed ffmpeg or ffprobe run.
type DependencyError struct {
	Tool   string
	Op     string
	Stderr string
	Err    error
}

func (e *DependencyError) Error() string {
	msg := fmt.Sprintf("%s %s failed: %v", e.Tool, e.Op, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap exposes both ErrDependencyFailure and the underlying cause, so
// callers can also test for context.DeadlineExceeded.
func (e *DependencyError) Unwrap() []error {
	return []error{ErrDependencyFailure, e.Err}
}

func trimStderr(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		s = "..." + s[len(s)-maxStderr:]
	}
	return s
}
