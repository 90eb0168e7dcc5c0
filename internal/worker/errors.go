package worker

import (
	"errors"
	"fmt"

	"github.com/cuongbtq/jobfeed/internal/notify"
)

// ErrAlreadyRetried marks a failed redelivery; it is dropped instead of
// requeued again.
var ErrAlreadyRetried = errors.New("notification already retried")

// RetryableError wraps a transient delivery failure.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError wraps err as retryable
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}

// shouldRequeue decides the NACK requeue flag for a failed notification
func shouldRequeue(err error) bool {
	if errors.Is(err, notify.ErrInvalidNotification) {
		return false
	}
	if errors.Is(err, ErrAlreadyRetried) {
		return false
	}

	var retryable *RetryableError
	return errors.As(err, &retryable)
}
