// Package database keeps the job history of the lab server in SQLite.
//
// Every request that runs a codec component or an ffmpeg operation is
// recorded as a Job with its input name, produced outputs, status, error
// text and duration. The codec packages never touch the database; only the
// request layer writes here.
//
// The database runs in WAL mode with a busy timeout so concurrent requests
// can record jobs while the history is being listed.
package database
