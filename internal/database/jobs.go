package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vclab/internal/metrics"
)

const (
	// DefaultListLimit is used when ListJobs is called with a non-positive limit.
	DefaultListLimit = 50
	// MaxListLimit caps a single ListJobs page.
	MaxListLimit = 1000
)

// RecordJob inserts job and fills in its ID. A zero CreatedAt is set to now.
func (d *Database) RecordJob(ctx context.Context, job *Job) error {
	start := time.Now()
	var err error
	defer func() { metrics.ObserveQuery("record_job", start, err) }()

	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.Status == "" {
		job.Status = StatusSuccess
	}
	outputs := job.Outputs
	if outputs == nil {
		outputs = []string{}
	}

	encoded, err := json.Marshal(outputs)
	if err != nil {
		return fmt.Errorf("failed to encode outputs: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, `
	INSERT INTO jobs (operation, input, outputs, status, error, duration_ms, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		job.Operation,
		job.Input,
		string(encoded),
		string(job.Status),
		job.Error,
		job.DurationMs,
		job.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record job: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read job id: %w", err)
	}
	job.ID = id
	return nil
}

// ListJobs returns the most recent jobs, newest first.
func (d *Database) ListJobs(ctx context.Context, limit int) ([]Job, error) {
	start := time.Now()
	var err error
	defer func() { metrics.ObserveQuery("list_jobs", start, err) }()

	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
	SELECT id, operation, input, outputs, status, error, duration_ms, created_at
	FROM jobs
	ORDER BY created_at DESC, id DESC
	LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]Job, 0)
	for rows.Next() {
		var job Job
		var outputs, status string
		var createdAt int64

		if err = rows.Scan(&job.ID, &job.Operation, &job.Input, &outputs, &status,
			&job.Error, &job.DurationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		if err = json.Unmarshal([]byte(outputs), &job.Outputs); err != nil {
			return nil, fmt.Errorf("failed to decode outputs of job %d: %w", job.ID, err)
		}
		job.Status = JobStatus(status)
		job.CreatedAt = time.UnixMilli(createdAt)
		jobs = append(jobs, job)
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// PurgeJobs deletes jobs created strictly before the cutoff and reports how
// many were removed.
func (d *Database) PurgeJobs(ctx context.Context, before time.Time) (int64, error) {
	start := time.Now()
	var err error
	defer func() { metrics.ObserveQuery("purge_jobs", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, "DELETE FROM jobs WHERE created_at < ?", before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge jobs: %w", err)
	}
	return result.RowsAffected()
}

// CountJobs returns the number of recorded jobs.
func (d *Database) CountJobs(ctx context.Context) (int, error) {
	start := time.Now()
	var err error
	defer func() { metrics.ObserveQuery("count_jobs", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	err = d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs").Scan(&count)
	return count, err
}
