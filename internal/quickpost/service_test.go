package quickpost

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/cuongbtq/jobfeed/internal/domain"
	"github.com/cuongbtq/jobfeed/internal/normalizer"
	"github.com/cuongbtq/jobfeed/internal/notify"
	"github.com/cuongbtq/jobfeed/internal/spam"
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

type unavailableStore struct {
	*storage.MemoryStore
}

func (unavailableStore) Create(context.Context, *domain.NormalizedJob) (bool, error) {
	return false, domain.ErrStoreUnavailable
}

func newService(store domain.JobStore, n Notifier) *Service {
	return NewService(store, normalizer.NewNormalizer(&normalizer.Config{}), spam.NewDefaultScorer(), n, nil)
}

func validSubmission() Submission {
	return Submission{
		Title:       "Tuyển nhân viên phục vụ",
		Location:    "Quận 1, TP.HCM",
		SalaryText:  "25,000 VNĐ/giờ",
		JobTypeText: "Bán thời gian",
		Description: "Làm ca tối 18h-22h, <b>có</b> hỗ trợ ăn tối.",
		Contact:     domain.ContactInfo{Phone: "0912345678", Email: "Chu.Quan@Example.vn"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Submission)
		wantFields []string
	}{
		{name: "valid", mutate: func(*Submission) {}},
		{name: "missing title", mutate: func(s *Submission) { s.Title = "   " }, wantFields: []string{"title"}},
		{name: "missing description", mutate: func(s *Submission) { s.Description = "" }, wantFields: []string{"description"}},
		{
			name:       "no contact",
			mutate:     func(s *Submission) { s.Contact = domain.ContactInfo{} },
			wantFields: []string{"contact_info"},
		},
		{
			name:       "bad email",
			mutate:     func(s *Submission) { s.Contact.Email = "not-an-email" },
			wantFields: []string{"contact_info.email"},
		},
		{
			name:       "title too long",
			mutate:     func(s *Submission) { s.Title = strings.Repeat("a", 201) },
			wantFields: []string{"title"},
		},
		{
			name:       "zalo only is enough",
			mutate:     func(s *Submission) { s.Contact = domain.ContactInfo{Zalo: "0912345678"} },
			wantFields: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			tt.mutate(&sub)

			err := Validate(sub)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			got := make([]string, len(verr.Fields))
			for i, f := range verr.Fields {
				got[i] = f.Field
			}
			assert.Equal(t, tt.wantFields, got)
		})
	}
}

func TestSubmit_Accepted(t *testing.T) {
	store := storage.NewMemoryStore()
	n := &recordingNotifier{}
	svc := newService(store, n)

	job, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, job.Status)
	assert.False(t, job.IsVerified)
	assert.Equal(t, domain.SourceQuickPost, job.Source)
	assert.Equal(t, "food-service", job.CategoryID)
	assert.Equal(t, domain.JobTypePartTime, job.JobTypeID)
	assert.Equal(t, "Làm ca tối 18h-22h, có hỗ trợ ăn tối.", job.Description)
	require.NotNil(t, job.SpamScore)
	assert.Equal(t, 0, *job.SpamScore)
	assert.Equal(t, "chu.quan@example.vn", job.ContactEmail())

	stored, err := store.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.Title, stored.Title)

	require.Len(t, n.got, 1)
	assert.Equal(t, notify.KindReceived, n.got[0].Kind)
	assert.Equal(t, job.ID, n.got[0].JobID)
}

func TestSubmit_LowScoreKeepsReason(t *testing.T) {
	sub := validSubmission()
	sub.Description = "Liên hệ trước, cần đặt cọc đồng phục"

	job, err := newService(storage.NewMemoryStore(), nil).Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, spam.WeightDescriptionKeyword, *job.SpamScore)
	assert.Contains(t, job.ModerationNote, "blacklisted keyword in description")
}

func TestSubmit_SpamNeverPersisted(t *testing.T) {
	store := storage.NewMemoryStore()
	n := &recordingNotifier{}
	svc := newService(store, n)

	sub := validSubmission()
	sub.Title = "Tuyển gấp"
	sub.Description = "VIỆC NHẸ LƯƠNG CAO, LIÊN HỆ NGAY bit.ly/abc bit.ly/def"

	job, err := svc.Submit(context.Background(), sub)
	assert.Nil(t, job)

	var spamErr *SpamRejectedError
	require.ErrorAs(t, err, &spamErr)
	assert.GreaterOrEqual(t, spamErr.Score, spam.DefaultThreshold)
	assert.Contains(t, spamErr.Reason, "shortened link")
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, n.got)
}

func TestSubmit_ValidationBeforeScoring(t *testing.T) {
	store := storage.NewMemoryStore()
	sub := validSubmission()
	sub.Title = "VIỆC NHẸ LƯƠNG CAO"
	sub.Contact = domain.ContactInfo{}

	_, err := newService(store, nil).Submit(context.Background(), sub)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	var spamErr *SpamRejectedError
	assert.False(t, errors.As(err, &spamErr))
}

func TestSubmit_MarkupOnlyFields(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		wantFields  []string
	}{
		{name: "title", title: "<img src=x>", description: "Làm ca tối", wantFields: []string{"title"}},
		{name: "description", title: "Tuyển phục vụ", description: "<script>alert(1)</script>", wantFields: []string{"description"}},
		{name: "both", title: "<b></b>", description: "<img src=x>", wantFields: []string{"title", "description"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			sub := validSubmission()
			sub.Title = tt.title
			sub.Description = tt.description

			_, err := newService(store, nil).Submit(context.Background(), sub)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			fields := make([]string, len(verr.Fields))
			for i, f := range verr.Fields {
				fields[i] = f.Field
			}
			assert.Equal(t, tt.wantFields, fields)
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestSubmit_ZaloNumberIsScored(t *testing.T) {
	tests := []struct {
		name        string
		contact     domain.ContactInfo
		description string
		wantScore   int
		wantSpam    bool
	}{
		{
			name:      "foreign zalo only",
			contact:   domain.ContactInfo{Zalo: "+1 202 555 0182"},
			wantScore: spam.WeightSuspiciousPhone,
		},
		{
			name:      "valid phone with foreign zalo",
			contact:   domain.ContactInfo{Phone: "0912345678", Zalo: "+1 202 555 0182"},
			wantScore: spam.WeightSuspiciousPhone,
		},
		{
			name:        "foreign zalo with blacklisted description",
			contact:     domain.ContactInfo{Zalo: "0044 20 7946 0958"},
			description: "Cần đặt cọc trước khi nhận việc",
			wantSpam:    true,
		},
		{
			name:      "vietnamese zalo",
			contact:   domain.ContactInfo{Zalo: "0912345678"},
			wantScore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			sub.Contact = tt.contact
			if tt.description != "" {
				sub.Description = tt.description
			}

			job, err := newService(storage.NewMemoryStore(), nil).Submit(context.Background(), sub)
			if tt.wantSpam {
				var spamErr *SpamRejectedError
				require.ErrorAs(t, err, &spamErr)
				assert.Contains(t, spamErr.Reason, "suspicious phone number")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, *job.SpamScore)
		})
	}
}

func TestSubmit_StoreFailure(t *testing.T) {
	n := &recordingNotifier{}
	svc := newService(unavailableStore{storage.NewMemoryStore()}, n)

	_, err := svc.Submit(context.Background(), validSubmission())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Empty(t, n.got)
}

func TestSubmit_PosterID(t *testing.T) {
	sub := validSubmission()
	sub.PosterID = "user-42"

	job, err := newService(storage.NewMemoryStore(), nil).Submit(context.Background(), sub)
	require.NoError(t, err)
	require.NotNil(t, job.PosterID)
	assert.Equal(t, "user-42", *job.PosterID)
}
