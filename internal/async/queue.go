// Package async runs audit batches off the caller's goroutine, for watch mode.
package async

import (
	"context"
	"time"
)

// Job is one batch of document paths to audit.
type Job struct {
	ID          string
	Paths       []string
	SubmittedAt time.Time
}

// Handler audits one batch.
type Handler func(ctx context.Context, job Job) error
