package domain

import "errors"

var (
	// ErrJobNotFound is returned when a job cannot be found in the store
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidJob is returned when a record breaks a model invariant
	ErrInvalidJob = errors.New("invalid job")

	// ErrStatusChanged is returned by conditional writes when the job is no
	// longer in the expected status
	ErrStatusChanged = errors.New("job status changed concurrently")

	// ErrStoreUnavailable wraps failures of the backing store itself
	ErrStoreUnavailable = errors.New("job store unavailable")
)
