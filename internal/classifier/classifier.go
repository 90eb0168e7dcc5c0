// Package classifier implements the AI category fallback used by the
// normalizer when no rule-table keyword matches a listing.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// ErrNotConfigured is returned by Noop and by New without an API key.
var ErrNotConfigured = errors.New("classifier not configured")

const (
	defaultModel          = "gemini-2.5-flash"
	maxDescriptionRunes   = 4000
	maxLabelTokens        = 16
	categoryPromptPattern = `You categorize Vietnamese job postings.
Answer with exactly one category label from this list, or a short new label (1-3 words) if none fits:
%s

Reply with the label only. No punctuation, no explanation.

Job title: %s
Job description:
%s`
)

// KnownCategories are offered to the model as preferred answers.
var KnownCategories = []string{
	"it-software", "marketing", "sales", "design", "finance", "hr",
	"healthcare", "education", "food-service", "retail", "logistics",
	"manufacturing", "construction", "real-estate", "other",
}

// Config holds the LLM settings
type Config struct {
	APIKey string
	Model  string
}

// LLM classifies listings through a langchaingo model.
type LLM struct {
	model llms.Model
}

// New creates an LLM classifier backed by Google Gemini
func New(ctx context.Context, cfg Config) (*LLM, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return NewWithModel(llm), nil
}

// NewWithModel wraps any langchaingo model.
func NewWithModel(model llms.Model) *LLM {
	return &LLM{model: model}
}

// Classify asks the model for one category label. The caller owns the
// deadline through ctx.
func (c *LLM) Classify(ctx context.Context, title, description string) (string, error) {
	prompt := BuildPrompt(title, description)

	resp, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt,
		llms.WithTemperature(0),
		llms.WithMaxTokens(maxLabelTokens),
	)
	if err != nil {
		return "", fmt.Errorf("generate category: %w", err)
	}

	label := CleanLabel(resp)
	if label == "" {
		return "", errors.New("empty category label")
	}
	return label, nil
}

// BuildPrompt renders the categorization prompt, truncating long descriptions.
func BuildPrompt(title, description string) string {
	if utf8.RuneCountInString(description) > maxDescriptionRunes {
		description = string([]rune(description)[:maxDescriptionRunes])
	}
	return fmt.Sprintf(categoryPromptPattern, strings.Join(KnownCategories, ", "), title, description)
}

// CleanLabel keeps the first line of a model answer and strips quoting,
// markdown and a leading "Category:" prefix.
func CleanLabel(resp string) string {
	resp = strings.TrimSpace(resp)
	if i := strings.IndexAny(resp, "\r\n"); i >= 0 {
		resp = resp[:i]
	}
	resp = strings.Trim(resp, "`*\"' .")
	if i := strings.Index(resp, ":"); i >= 0 {
		resp = resp[i+1:]
	}
	return strings.TrimSpace(strings.Trim(resp, "`*\"' ."))
}

// Noop always fails, so the normalizer falls back to "other".
type Noop struct{}

// Classify implements normalizer.Classifier
func (Noop) Classify(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}
