// Package timeouts centralizes timeout values for handler and store operations.
package timeouts

import "time"

const (
	// Ping is the timeout for health checks.
	Ping = 2 * time.Second
	// Short is the timeout for single-document reads.
	Short = 5 * time.Second
	// Medium is the timeout for ordinary writes.
	Medium = 10 * time.Second
	// Long is the timeout for uploads and multi-step actions.
	Long = 30 * time.Second
)
