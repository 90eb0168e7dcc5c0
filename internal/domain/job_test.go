package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNormalizedJob_Validate(t *testing.T) {
	tests := []struct {
		name    string
		job     NormalizedJob
		wantErr bool
	}{
		{
			name: "pending crawled job",
			job: NormalizedJob{
				Title:       "Backend Developer",
				Source:      SourceCrawled,
				ExternalURL: strPtr("https://example.vn/jobs/1"),
				Status:      StatusPending,
			},
		},
		{
			name: "crawled job without external url",
			job: NormalizedJob{
				Title:  "Backend Developer",
				Source: SourceCrawled,
				Status: StatusPending,
			},
			wantErr: true,
		},
		{
			name: "crawled job carrying contact info",
			job: NormalizedJob{
				Title:       "Backend Developer",
				Source:      SourceCrawled,
				ExternalURL: strPtr("https://example.vn/jobs/1"),
				ContactInfo: &ContactInfo{Phone: "0912345678"},
				Status:      StatusPending,
			},
			wantErr: true,
		},
		{
			name: "quick-post with contact",
			job: NormalizedJob{
				Title:       "Phục vụ quán cà phê",
				Source:      SourceQuickPost,
				ContactInfo: &ContactInfo{Zalo: "0912345678"},
				Status:      StatusPending,
			},
		},
		{
			name: "quick-post without contact or poster",
			job: NormalizedJob{
				Title:  "Phục vụ quán cà phê",
				Source: SourceQuickPost,
				Status: StatusPending,
			},
			wantErr: true,
		},
		{
			name: "active but not verified",
			job: NormalizedJob{
				Title:       "Backend Developer",
				Source:      SourceCrawled,
				ExternalURL: strPtr("https://example.vn/jobs/1"),
				Status:      StatusActive,
			},
			wantErr: true,
		},
		{
			name: "featured job has no provenance constraint",
			job: NormalizedJob{
				Title:      "Featured",
				Source:     SourceFeatured,
				Status:     StatusActive,
				IsVerified: true,
			},
		},
		{
			name: "empty title",
			job: NormalizedJob{
				Source: SourceFeatured,
				Status: StatusPending,
			},
			wantErr: true,
		},
		{
			name: "unknown status",
			job: NormalizedJob{
				Title:  "x",
				Source: SourceFeatured,
				Status: "archived",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.job.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidJob)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "active", "rejected", "closed"} {
		got, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(got))
	}

	_, err := ParseStatus("PENDING")
	assert.Error(t, err)
}

func TestContactInfo_IsEmpty(t *testing.T) {
	var nilInfo *ContactInfo
	assert.True(t, nilInfo.IsEmpty())
	assert.True(t, (&ContactInfo{}).IsEmpty())
	assert.False(t, (&ContactInfo{Email: "a@b.vn"}).IsEmpty())
}
