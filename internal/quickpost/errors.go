package quickpost

import (
	"fmt"
	"strings"
)

// FieldError describes one invalid field of a submission.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned before any scoring when a submission is
// incomplete or malformed.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid submission: " + strings.Join(parts, ", ")
}

// SpamRejectedError is returned when the spam scorer rejects a submission.
// The submission is never persisted.
type SpamRejectedError struct {
	Score  int
	Reason string
}

func (e *SpamRejectedError) Error() string {
	return fmt.Sprintf("submission rejected as spam (score %d): %s", e.Score, e.Reason)
}
