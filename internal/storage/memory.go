package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/cuongbtq/jobfeed/internal/domain"
)

// MemoryStore is an in-process domain.JobStore used for crawler dry runs
// and tests. It follows the same uniqueness and ordering rules as
// PostgresStore.
type MemoryStore struct {
	mu    sync.RWMutex
	jobs  map[string]domain.NormalizedJob
	byURL map[string]string
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:  make(map[string]domain.NormalizedJob),
		byURL: make(map[string]string),
	}
}

// Create implements domain.JobStore
func (s *MemoryStore) Create(_ context.Context, job *domain.NormalizedJob) (bool, error) {
	if err := job.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if job.ExternalURL != nil && *job.ExternalURL != "" {
		if _, ok := s.byURL[*job.ExternalURL]; ok {
			return false, nil
		}
		s.byURL[*job.ExternalURL] = job.ID
	}
	s.jobs[job.ID] = *job
	return true, nil
}

// GetByID implements domain.JobStore
func (s *MemoryStore) GetByID(_ context.Context, id string) (*domain.NormalizedJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return &job, nil
}

// Update implements domain.JobStore
func (s *MemoryStore) Update(_ context.Context, job *domain.NormalizedJob, from domain.Status) error {
	if err := job.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.jobs[job.ID]
	if !ok {
		return domain.ErrJobNotFound
	}
	if current.Status != from {
		return domain.ErrStatusChanged
	}
	current.Status = job.Status
	current.IsVerified = job.IsVerified
	current.ModerationNote = job.ModerationNote
	current.UpdatedAt = job.UpdatedAt
	s.jobs[job.ID] = current
	return nil
}

// Delete implements domain.JobStore
func (s *MemoryStore) Delete(_ context.Context, id string, from domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	if job.Status != from {
		return domain.ErrStatusChanged
	}
	if job.ExternalURL != nil {
		delete(s.byURL, *job.ExternalURL)
	}
	delete(s.jobs, id)
	return nil
}

// List implements domain.JobStore
func (s *MemoryStore) List(_ context.Context, filter domain.JobFilter) ([]domain.NormalizedJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.NormalizedJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		if filter.Source != "" && job.Source != filter.Source {
			continue
		}
		if c := filter.Cursor; c != nil && !before(job, c) {
			continue
		}
		out = append(out, job)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	if filter.PageSize > 0 && len(out) > filter.PageSize+1 {
		out = out[:filter.PageSize+1]
	}
	return out, nil
}

// Len returns the number of stored jobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// before reports whether job sorts after the cursor position, matching
// (created_at, job_id) < (cursor.created_at, cursor.job_id).
func before(job domain.NormalizedJob, c *domain.JobCursor) bool {
	if job.CreatedAt.Equal(c.CreatedAt) {
		return job.ID < c.JobID
	}
	return job.CreatedAt.Before(c.CreatedAt)
}
