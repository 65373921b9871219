// Package logging provides the leveled logger shared by the vclab server
// and CLI.
//
// Levels, lowest first:
//   - DEBUG: request and ffmpeg command detail
//   - INFO: startup and job completion
//   - WARN: recoverable problems
//   - ERROR: failed jobs and requests
//   - FATAL: startup failures that terminate the process
//
// The level comes from DEBUG (any truthy value) or LOG_LEVEL, and may be
// replaced at runtime with SetLevel, which the CLI does for --log-level.
package logging
