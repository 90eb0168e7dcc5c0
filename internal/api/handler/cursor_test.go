package handler

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/cuongbtq/jobfeed/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobCursor_RoundTrip(t *testing.T) {
	in := &domain.JobCursor{
		CreatedAt: time.Date(2025, 3, 1, 8, 30, 15, 123456789, time.UTC),
		JobID:     "6f1c2a8e-3d4b-4f5a-9b7c-1d2e3f4a5b6c",
	}

	encoded := EncodeJobCursor(in)
	out, err := DecodeJobCursor(encoded)
	require.NoError(t, err)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	assert.Equal(t, in.JobID, out.JobID)
}

func TestDecodeJobCursor(t *testing.T) {
	enc := func(s string) string { return base64.URLEncoding.EncodeToString([]byte(s)) }

	tests := []struct {
		name    string
		input   string
		wantNil bool
		wantErr string
	}{
		{name: "empty", input: "", wantNil: true},
		{name: "not base64", input: "%%%", wantErr: "invalid cursor encoding"},
		{name: "no separator", input: enc("12345"), wantErr: "invalid cursor format"},
		{name: "no id", input: enc("12345|"), wantErr: "invalid cursor format"},
		{name: "bad timestamp", input: enc("yesterday|abc"), wantErr: "invalid createdAt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeJobCursor(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, got)
			}
		})
	}

	assert.Empty(t, EncodeJobCursor(nil))
}
