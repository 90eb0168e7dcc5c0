package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	answer string
	err    error
	prompt string
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.prompt = text.Text
			}
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.answer}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestCleanLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"logistics", "logistics"},
		{"  Logistics.\n", "Logistics"},
		{"\"food-service\"", "food-service"},
		{"**retail**", "retail"},
		{"Category: Real Estate", "Real Estate"},
		{"sales\nBecause the posting mentions quotas", "sales"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanLabel(tt.in))
		})
	}
}

func TestLLM_Classify(t *testing.T) {
	model := &fakeModel{answer: "Logistics\n"}
	c := NewWithModel(model)

	label, err := c.Classify(context.Background(), "Nhân viên kho", "Sắp xếp hàng hóa")

	require.NoError(t, err)
	assert.Equal(t, "Logistics", label)
	assert.Contains(t, model.prompt, "Nhân viên kho")
	assert.Contains(t, model.prompt, "it-software")
}

func TestLLM_Classify_Errors(t *testing.T) {
	_, err := NewWithModel(&fakeModel{err: errors.New("quota exceeded")}).
		Classify(context.Background(), "t", "d")
	assert.ErrorContains(t, err, "quota exceeded")

	_, err = NewWithModel(&fakeModel{answer: "  \n"}).
		Classify(context.Background(), "t", "d")
	assert.Error(t, err)
}

func TestBuildPrompt_TruncatesDescription(t *testing.T) {
	long := strings.Repeat("ă", maxDescriptionRunes+500)
	prompt := BuildPrompt("title", long)
	assert.Equal(t, maxDescriptionRunes, strings.Count(prompt, "ă"))
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNoop(t *testing.T) {
	_, err := Noop{}.Classify(context.Background(), "t", "d")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
