package domain

import (
	"context"
	"time"
)

// JobCursor is a keyset pagination position (created_at DESC, id DESC).
type JobCursor struct {
	CreatedAt time.Time
	JobID     string
}

// JobFilter narrows a listing query.
type JobFilter struct {
	Status   Status
	Source   string
	PageSize int
	Cursor   *JobCursor
}

// JobStore defines persistence operations for normalized jobs.
type JobStore interface {
	// Create inserts a job. For crawled jobs an existing row with the same
	// external URL is left untouched and created is false.
	Create(ctx context.Context, job *NormalizedJob) (created bool, err error)

	// GetByID returns ErrJobNotFound when no row matches.
	GetByID(ctx context.Context, id string) (*NormalizedJob, error)

	// Update persists status, verification and updated_at of a job, only
	// while its stored status is still from. ErrStatusChanged otherwise.
	Update(ctx context.Context, job *NormalizedJob, from Status) error

	// Delete removes a job whose stored status is still from;
	// ErrJobNotFound when no row exists, ErrStatusChanged when it moved on.
	Delete(ctx context.Context, id string, from Status) error

	// List returns up to PageSize+1 rows so callers can detect another page.
	List(ctx context.Context, filter JobFilter) ([]NormalizedJob, error)
}
