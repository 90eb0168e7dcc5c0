// Package moderation owns the visibility lifecycle of job records.
//
// Valid status graph:
//
//	pending ──► active ──► closed
//	   │
//	   └──────► rejected (record deleted)
//
// closed and rejected are terminal; nothing returns to pending.
package moderation

import (
	"errors"
	"fmt"

	"github.com/cuongbtq/jobfeed/internal/domain"
)

// ErrInvalidTransition is returned when an action does not apply to the
// job's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

var validTransitions = map[domain.Status][]domain.Status{
	domain.StatusPending: {domain.StatusActive, domain.StatusRejected},
	domain.StatusActive:  {domain.StatusClosed},
}

// IsTransitionAllowed reports whether from → to is permitted.
func IsTransitionAllowed(from, to domain.Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to domain.Status) error {
	if !IsTransitionAllowed(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
