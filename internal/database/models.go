package database

import "time"

type JobStatus string

const (
	StatusSuccess JobStatus = "success"
	StatusError   JobStatus = "error"
)

// Job is one recorded request against a codec component or the transcoder.
type Job struct {
	ID         int64     `json:"id"`
	Operation  string    `json:"operation"`
	Input      string    `json:"input,omitempty"`
	Outputs    []string  `json:"outputs"`
	Status     JobStatus `json:"status"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// StatusFor maps an operation result to its job status.
func StatusFor(err error) JobStatus {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
