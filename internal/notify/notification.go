// Package notify carries best-effort email notifications about job
// moderation outcomes from the API to the notification worker.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cuongbtq/jobfeed/internal/domain"
	"github.com/google/uuid"
)

// Kind identifies which message a notification renders to.
type Kind string

const (
	KindReceived Kind = "received"
	KindApproved Kind = "approved"
	KindRejected Kind = "rejected"
)

// ErrInvalidNotification is returned for messages that can never be delivered.
var ErrInvalidNotification = errors.New("invalid notification")

// Notification is one queued email.
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	To        string    `json:"to"`
	JobID     string    `json:"job_id"`
	JobTitle  string    `json:"job_title"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ForJob builds a notification addressed to the job's contact email.
// ok is false when the job has no contact email.
func ForJob(kind Kind, job *domain.NormalizedJob, reason string) (Notification, bool) {
	to := strings.TrimSpace(job.ContactEmail())
	if to == "" {
		return Notification{}, false
	}
	return Notification{
		ID:        uuid.New().String(),
		Kind:      kind,
		To:        to,
		JobID:     job.ID,
		JobTitle:  job.Title,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}, true
}

// Validate checks that the notification can be rendered and addressed.
func (n Notification) Validate() error {
	switch n.Kind {
	case KindReceived, KindApproved, KindRejected:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidNotification, n.Kind)
	}
	if !strings.Contains(n.To, "@") {
		return fmt.Errorf("%w: bad recipient %q", ErrInvalidNotification, n.To)
	}
	return nil
}

// Decode parses a queued notification and validates it.
func Decode(body []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return Notification{}, fmt.Errorf("%w: %v", ErrInvalidNotification, err)
	}
	if err := n.Validate(); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// Publisher hands a notification to the delivery backend.
type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

// Mailer sends one rendered email.
type Mailer interface {
	Send(ctx context.Context, to string, msg Message) error
}
