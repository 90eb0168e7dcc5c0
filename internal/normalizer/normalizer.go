// Package normalizer converts raw crawled listings and quick-post
// submissions into canonical NormalizedJob records.
package normalizer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cuongbtq/jobfeed/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultClassifierConcurrency = 4
	defaultClassifierTimeout     = 10 * time.Second
)

// Classifier is the external categorization backend. It returns a free
// category label for a job.
type Classifier interface {
	Classify(ctx context.Context, title, description string) (string, error)
}

// Config holds normalizer dependencies
type Config struct {
	Logger                *slog.Logger
	Classifier            Classifier
	ClassifierConcurrency int
	ClassifierTimeout     time.Duration
	Now                   func() time.Time
	NewID                 func() string
}

// Normalizer builds NormalizedJob records. It is safe for concurrent use.
type Normalizer struct {
	logger      *slog.Logger
	classifier  Classifier
	concurrency int
	timeout     time.Duration
	now         func() time.Time
	newID       func() string
}

// NewNormalizer creates a Normalizer, filling unset options with defaults
func NewNormalizer(cfg *Config) *Normalizer {
	n := &Normalizer{
		logger:      cfg.Logger,
		classifier:  cfg.Classifier,
		concurrency: cfg.ClassifierConcurrency,
		timeout:     cfg.ClassifierTimeout,
		now:         cfg.Now,
		newID:       cfg.NewID,
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}
	if n.concurrency <= 0 {
		n.concurrency = defaultClassifierConcurrency
	}
	if n.timeout <= 0 {
		n.timeout = defaultClassifierTimeout
	}
	if n.now == nil {
		n.now = func() time.Time { return time.Now().UTC() }
	}
	if n.newID == nil {
		n.newID = func() string { return uuid.New().String() }
	}
	return n
}

// Normalize converts one crawled listing into a pending NormalizedJob.
// Categorization failures degrade to "other" and are never returned.
func (n *Normalizer) Normalize(ctx context.Context, raw domain.RawListing) domain.NormalizedJob {
	salary := ParseSalary(raw.SalaryText)
	now := n.now()
	externalURL := strings.TrimSpace(raw.SourceURL)

	job := domain.NormalizedJob{
		ID:           n.newID(),
		Title:        collapseSpace(raw.Title),
		CompanyName:  collapseSpace(raw.CompanyName),
		LogoURL:      optional(raw.LogoURL),
		Location:     collapseSpace(raw.LocationText),
		SalaryMin:    salary.Min,
		SalaryMax:    salary.Max,
		SalaryText:   salary.Text,
		JobTypeID:    MapJobType(raw.JobTypeText, raw.Title),
		CategoryID:   n.categorize(ctx, raw.CategoryText, raw.Title, raw.Description),
		Description:  strings.TrimSpace(raw.Description),
		Requirements: cleanList(raw.Requirements),
		Benefits:     cleanList(raw.Benefits),
		Skills:       cleanList(raw.Skills),
		Source:       domain.SourceCrawled,
		ExternalURL:  &externalURL,
		Status:       domain.StatusPending,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
		ExpiresAt:    ParseExpiry(raw.ExpiryText),
	}

	return job
}

// NormalizeBatch normalizes raws preserving input order. Classifier
// fallbacks run concurrently, at most ClassifierConcurrency at a time.
func (n *Normalizer) NormalizeBatch(ctx context.Context, raws []domain.RawListing) []domain.NormalizedJob {
	out := make([]domain.NormalizedJob, len(raws))

	var g errgroup.Group
	g.SetLimit(n.concurrency)
	for i, raw := range raws {
		g.Go(func() error {
			out[i] = n.Normalize(ctx, raw)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// QuickPostInput is the already validated content of a quick-post.
type QuickPostInput struct {
	Title        string
	CompanyName  string
	Location     string
	SalaryText   string
	JobTypeText  string
	CategoryText string
	Description  string
	Requirements []string
	Benefits     []string
	Skills       []string
	Contact      domain.ContactInfo
	PosterID     string
	ExpiresAt    *time.Time
}

// NormalizeQuickPost is the lightweight path for user submissions: rule
// tables only, no classifier call.
func (n *Normalizer) NormalizeQuickPost(in QuickPostInput) domain.NormalizedJob {
	salary := ParseSalary(in.SalaryText)
	now := n.now()

	category, ok := MatchCategory(in.CategoryText, in.Title)
	if !ok {
		category = domain.CategoryOther
	}

	contact := in.Contact
	job := domain.NormalizedJob{
		ID:           n.newID(),
		Title:        collapseSpace(in.Title),
		CompanyName:  collapseSpace(in.CompanyName),
		Location:     collapseSpace(in.Location),
		SalaryMin:    salary.Min,
		SalaryMax:    salary.Max,
		SalaryText:   salary.Text,
		JobTypeID:    MapJobType(in.JobTypeText, in.Title),
		CategoryID:   category,
		Description:  strings.TrimSpace(in.Description),
		Requirements: cleanList(in.Requirements),
		Benefits:     cleanList(in.Benefits),
		Skills:       cleanList(in.Skills),
		Source:       domain.SourceQuickPost,
		Status:       domain.StatusPending,
		PosterID:     optional(in.PosterID),
		ContactInfo:  &contact,
		CreatedAt:    now,
		UpdatedAt:    now,
		ExpiresAt:    in.ExpiresAt,
	}

	return job
}

func (n *Normalizer) categorize(ctx context.Context, categoryText, title, description string) string {
	if id, ok := MatchCategory(categoryText, title); ok {
		return id
	}

	if n.classifier == nil {
		return domain.CategoryOther
	}

	cctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	label, err := n.classifier.Classify(cctx, title, description)
	if err != nil {
		n.logger.Warn("Category classification failed, using fallback",
			slog.String("title", title),
			slog.String("fallback", domain.CategoryOther),
			slog.Any("error", err),
		)
		return domain.CategoryOther
	}

	id := CanonicalCategory(label)
	if id == "" {
		return domain.CategoryOther
	}
	return id
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = collapseSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
