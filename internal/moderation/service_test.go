package moderation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cuongbtq/jobfeed/internal/domain"
	"github.com/cuongbtq/jobfeed/internal/notify"
	"github.com/cuongbtq/jobfeed/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu  sync.Mutex
	got []notify.Notification
}

func (r *recordingNotifier) Notify(n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

// failingDeleteStore lets Delete fail so ordering against notification can be checked.
type failingDeleteStore struct {
	*storage.MemoryStore
}

func (s failingDeleteStore) Delete(context.Context, string, domain.Status) error {
	return domain.ErrStoreUnavailable
}

// staleReadStore serves a snapshot taken before a concurrent moderator acted.
type staleReadStore struct {
	*storage.MemoryStore
	snapshot domain.NormalizedJob
}

func (s staleReadStore) GetByID(context.Context, string) (*domain.NormalizedJob, error) {
	job := s.snapshot
	return &job, nil
}

func quickPost(id, email string, created time.Time) *domain.NormalizedJob {
	return &domain.NormalizedJob{
		ID:          id,
		Title:       "Nhân viên phục vụ " + id,
		JobTypeID:   domain.JobTypePartTime,
		CategoryID:  "food-service",
		Source:      domain.SourceQuickPost,
		Status:      domain.StatusPending,
		ContactInfo: &domain.ContactInfo{Phone: "0912345678", Email: email},
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func seed(t *testing.T, jobs ...*domain.NormalizedJob) *storage.MemoryStore {
	t.Helper()
	s := storage.NewMemoryStore()
	for _, j := range jobs {
		_, err := s.Create(context.Background(), j)
		require.NoError(t, err)
	}
	return s
}

func TestIsTransitionAllowed(t *testing.T) {
	tests := []struct {
		from, to domain.Status
		want     bool
	}{
		{domain.StatusPending, domain.StatusActive, true},
		{domain.StatusPending, domain.StatusRejected, true},
		{domain.StatusActive, domain.StatusClosed, true},
		{domain.StatusPending, domain.StatusClosed, false},
		{domain.StatusActive, domain.StatusPending, false},
		{domain.StatusActive, domain.StatusRejected, false},
		{domain.StatusRejected, domain.StatusPending, false},
		{domain.StatusRejected, domain.StatusActive, false},
		{domain.StatusClosed, domain.StatusActive, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransitionAllowed(tt.from, tt.to))
		})
	}
}

func TestService_Approve(t *testing.T) {
	store := seed(t, quickPost("q1", "a@b.vn", time.Now()))
	n := &recordingNotifier{}
	svc := NewService(store, n, nil)

	job, err := svc.Approve(context.Background(), "q1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, job.Status)
	assert.True(t, job.IsVerified)

	stored, err := store.GetByID(context.Background(), "q1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, stored.Status)
	assert.True(t, stored.IsVerified)

	require.Len(t, n.got, 1)
	assert.Equal(t, notify.KindApproved, n.got[0].Kind)
	assert.Equal(t, "a@b.vn", n.got[0].To)

	_, err = svc.Approve(context.Background(), "q1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_ApproveWithoutEmailSkipsNotification(t *testing.T) {
	store := seed(t, quickPost("q1", "", time.Now()))
	n := &recordingNotifier{}

	_, err := NewService(store, n, nil).Approve(context.Background(), "q1")
	require.NoError(t, err)
	assert.Empty(t, n.got)
}

func TestService_ApproveUnknown(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), nil, nil)
	_, err := svc.Approve(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestService_Reject(t *testing.T) {
	store := seed(t, quickPost("q1", "a@b.vn", time.Now()))
	n := &recordingNotifier{}
	svc := NewService(store, n, nil)

	err := svc.Reject(context.Background(), "q1", "  Nội dung không phù hợp ")
	require.NoError(t, err)

	_, err = store.GetByID(context.Background(), "q1")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)

	require.Len(t, n.got, 1)
	assert.Equal(t, notify.KindRejected, n.got[0].Kind)
	assert.Equal(t, "Nội dung không phù hợp", n.got[0].Reason)

	assert.ErrorIs(t, svc.Reject(context.Background(), "q1", ""), domain.ErrJobNotFound)
}

func TestService_RejectActiveIsInvalid(t *testing.T) {
	store := seed(t, quickPost("q1", "", time.Now()))
	svc := NewService(store, nil, nil)

	_, err := svc.Approve(context.Background(), "q1")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Reject(context.Background(), "q1", "late"), ErrInvalidTransition)
	_, err = store.GetByID(context.Background(), "q1")
	assert.NoError(t, err)
}

func TestService_RejectStoreFailure(t *testing.T) {
	store := failingDeleteStore{seed(t, quickPost("q1", "a@b.vn", time.Now()))}
	n := &recordingNotifier{}

	err := NewService(store, n, nil).Reject(context.Background(), "q1", "spam")
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	assert.Empty(t, n.got)

	job, err := store.GetByID(context.Background(), "q1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, job.Status)
}

func TestService_ConcurrentModeratorsLoseCleanly(t *testing.T) {
	ctx := context.Background()
	pending := quickPost("q1", "a@b.vn", time.Now())
	mem := seed(t, pending)
	n := &recordingNotifier{}

	_, err := NewService(mem, n, nil).Approve(ctx, "q1")
	require.NoError(t, err)

	stale := NewService(staleReadStore{MemoryStore: mem, snapshot: *pending}, n, nil)

	err = stale.Reject(ctx, "q1", "spam")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = stale.Approve(ctx, "q1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := mem.GetByID(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, stored.Status)
	require.Len(t, n.got, 1)
	assert.Equal(t, notify.KindApproved, n.got[0].Kind)
}

func TestService_Close(t *testing.T) {
	store := seed(t, quickPost("q1", "", time.Now()))
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	_, err := svc.Close(ctx, "q1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Approve(ctx, "q1")
	require.NoError(t, err)

	job, err := svc.Close(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, job.Status)
	assert.True(t, job.IsVerified)
}

func TestService_ListPending(t *testing.T) {
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	store := seed(t,
		quickPost("q1", "", base),
		quickPost("q2", "", base.Add(time.Minute)),
		quickPost("q3", "", base.Add(2*time.Minute)),
	)
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	_, err := svc.Approve(ctx, "q2")
	require.NoError(t, err)

	page, err := svc.ListPending(ctx, 1, nil)
	require.NoError(t, err)
	require.Len(t, page.Jobs, 1)
	assert.Equal(t, "q3", page.Jobs[0].ID)
	require.NotNil(t, page.NextCursor)

	page, err = svc.ListPending(ctx, 1, page.NextCursor)
	require.NoError(t, err)
	require.Len(t, page.Jobs, 1)
	assert.Equal(t, "q1", page.Jobs[0].ID)
	assert.Nil(t, page.NextCursor)
}
