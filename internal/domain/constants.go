package domain

import "fmt"

// Status is the visibility state of a job record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusRejected Status = "rejected"
	StatusClosed   Status = "closed"
)

// ParseStatus converts a raw string to a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusActive, StatusRejected, StatusClosed:
		return st, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// Canonical job type ids.
const (
	JobTypeFullTime   = "full-time"
	JobTypePartTime   = "part-time"
	JobTypeInternship = "internship"
	JobTypeContract   = "contract"
	JobTypeRemote     = "remote"
)

// CategoryOther is used when neither the rule table nor the classifier
// produced a category.
const CategoryOther = "other"

// NegotiableSalaryText is the display text for negotiable salaries.
const NegotiableSalaryText = "Thỏa thuận"
