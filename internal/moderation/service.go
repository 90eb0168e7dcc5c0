package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cuongbtq/jobfeed/internal/domain"
	"github.com/cuongbtq/jobfeed/internal/notify"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Notifier delivers notifications without blocking the caller.
type Notifier interface {
	Notify(n notify.Notification)
}

// Service applies admin moderation actions.
type Service struct {
	store    domain.JobStore
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a moderation service
func NewService(store domain.JobStore, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PendingPage is one page of the moderation queue.
type PendingPage struct {
	Jobs       []domain.NormalizedJob
	NextCursor *domain.JobCursor
}

// ListPending returns pending jobs newest first.
func (s *Service) ListPending(ctx context.Context, pageSize int, cursor *domain.JobCursor) (*PendingPage, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	jobs, err := s.store.List(ctx, domain.JobFilter{
		Status:   domain.StatusPending,
		PageSize: pageSize,
		Cursor:   cursor,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending jobs: %w", err)
	}

	page := &PendingPage{Jobs: jobs}
	if len(jobs) > pageSize {
		page.Jobs = jobs[:pageSize]
		last := page.Jobs[pageSize-1]
		page.NextCursor = &domain.JobCursor{CreatedAt: last.CreatedAt, JobID: last.ID}
	}
	return page, nil
}

// Approve publishes a pending job and notifies its poster.
func (s *Service) Approve(ctx context.Context, id string) (*domain.NormalizedJob, error) {
	job, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(job.Status, domain.StatusActive); err != nil {
		return nil, err
	}

	from := job.Status
	job.Status = domain.StatusActive
	job.IsVerified = true
	job.UpdatedAt = s.now()

	if err := job.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, job, from); err != nil {
		return nil, writeError("failed to approve job", from, domain.StatusActive, err)
	}

	s.logger.Info("Job approved", slog.String("job_id", job.ID))
	s.notify(notify.KindApproved, job, "")

	return job, nil
}

// Reject deletes the pending job and then notifies the poster with reason.
func (s *Service) Reject(ctx context.Context, id, reason string) error {
	job, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := checkTransition(job.Status, domain.StatusRejected); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, job.ID, job.Status); err != nil {
		return writeError("failed to delete rejected job", job.Status, domain.StatusRejected, err)
	}

	reason = strings.TrimSpace(reason)
	s.logger.Info("Job rejected",
		slog.String("job_id", job.ID),
		slog.String("reason", reason),
	)
	s.notify(notify.KindRejected, job, reason)
	return nil
}

// Close takes an active job off the public listing.
func (s *Service) Close(ctx context.Context, id string) (*domain.NormalizedJob, error) {
	job, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(job.Status, domain.StatusClosed); err != nil {
		return nil, err
	}

	from := job.Status
	job.Status = domain.StatusClosed
	job.UpdatedAt = s.now()

	if err := s.store.Update(ctx, job, from); err != nil {
		return nil, writeError("failed to close job", from, domain.StatusClosed, err)
	}

	s.logger.Info("Job closed", slog.String("job_id", job.ID))
	return job, nil
}

// writeError maps a lost conditional write to ErrInvalidTransition
func writeError(msg string, from, to domain.Status, err error) error {
	switch {
	case errors.Is(err, domain.ErrStatusChanged):
		return fmt.Errorf("%w: %s -> %s: %v", ErrInvalidTransition, from, to, err)
	case errors.Is(err, domain.ErrJobNotFound):
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func (s *Service) notify(kind notify.Kind, job *domain.NormalizedJob, reason string) {
	if s.notifier == nil {
		return
	}
	n, ok := notify.ForJob(kind, job, reason)
	if !ok {
		s.logger.Debug("No contact email, skipping notification",
			slog.String("job_id", job.ID),
			slog.String("kind", string(kind)),
		)
		return
	}
	s.notifier.Notify(n)
}
