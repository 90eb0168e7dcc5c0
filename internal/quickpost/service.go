// Package quickpost handles anonymous and candidate job submissions.
package quickpost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cuongbtq/jobfeed/internal/domain"
	"github.com/cuongbtq/jobfeed/internal/normalizer"
	"github.com/cuongbtq/jobfeed/internal/notify"
	"github.com/cuongbtq/jobfeed/internal/sanitize"
	"github.com/cuongbtq/jobfeed/internal/spam"
	"github.com/go-playground/validator/v10"
)

// Submission is a quick-post as received from a client.
type Submission struct {
	Title        string             `validate:"required,max=200"`
	CompanyName  string             `validate:"max=200"`
	Location     string             `validate:"max=200"`
	SalaryText   string             `validate:"max=100"`
	JobTypeText  string             `validate:"max=100"`
	CategoryText string             `validate:"max=100"`
	Description  string             `validate:"required,max=5000"`
	Requirements []string           `validate:"max=30,dive,max=300"`
	Benefits     []string           `validate:"max=30,dive,max=300"`
	Skills       []string           `validate:"max=30,dive,max=100"`
	Contact      domain.ContactInfo `validate:"-"`
	ExpiresAt    *time.Time         `validate:"-"`
	// PosterID is set from an authenticated session, never from the body.
	PosterID string `validate:"-"`
}

type contactRules struct {
	Phone string `validate:"max=20"`
	Zalo  string `validate:"max=20"`
	Email string `validate:"omitempty,email,max=254"`
}

// Notifier delivers notifications without blocking the caller.
type Notifier interface {
	Notify(n notify.Notification)
}

// Service runs the submission pipeline:
// validate, sanitize, spam score, normalize, persist, notify.
type Service struct {
	store      domain.JobStore
	normalizer *normalizer.Normalizer
	scorer     *spam.Scorer
	sanitizer  *sanitize.Sanitizer
	notifier   Notifier
	logger     *slog.Logger
}

// NewService creates a quick-post service
func NewService(store domain.JobStore, norm *normalizer.Normalizer, scorer *spam.Scorer, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		normalizer: norm,
		scorer:     scorer,
		sanitizer:  sanitize.New(),
		notifier:   notifier,
		logger:     logger,
	}
}

// Submit validates, scores and stores a submission. It returns
// *ValidationError or *SpamRejectedError for client errors; any other
// error is a store failure.
func (s *Service) Submit(ctx context.Context, sub Submission) (*domain.NormalizedJob, error) {
	if err := Validate(sub); err != nil {
		return nil, err
	}

	clean := s.sanitizeSubmission(sub)
	if err := markupOnly(clean); err != nil {
		return nil, err
	}

	verdict := s.scorer.Score(spam.Submission{
		Title:       clean.Title,
		Description: clean.Description,
		Phone:       clean.Contact.Phone,
		Zalo:        clean.Contact.Zalo,
	})
	if verdict.IsSpam {
		s.logger.Warn("Quick-post rejected as spam",
			slog.Int("score", verdict.Score),
			slog.String("reason", verdict.Reason),
		)
		return nil, &SpamRejectedError{Score: verdict.Score, Reason: verdict.Reason}
	}

	job := s.normalizer.NormalizeQuickPost(normalizer.QuickPostInput{
		Title:        clean.Title,
		CompanyName:  clean.CompanyName,
		Location:     clean.Location,
		SalaryText:   clean.SalaryText,
		JobTypeText:  clean.JobTypeText,
		CategoryText: clean.CategoryText,
		Description:  clean.Description,
		Requirements: clean.Requirements,
		Benefits:     clean.Benefits,
		Skills:       clean.Skills,
		Contact:      clean.Contact,
		PosterID:     clean.PosterID,
		ExpiresAt:    clean.ExpiresAt,
	})
	score := verdict.Score
	job.SpamScore = &score
	if verdict.Reason != "" {
		job.ModerationNote = "spam check: " + verdict.Reason
	}

	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("normalized quick-post is invalid: %w", err)
	}

	if _, err := s.store.Create(ctx, &job); err != nil {
		return nil, fmt.Errorf("failed to save quick-post: %w", err)
	}

	s.logger.Info("Quick-post accepted",
		slog.String("job_id", job.ID),
		slog.Int("spam_score", score),
		slog.String("category_id", job.CategoryID),
	)

	if s.notifier != nil {
		if n, ok := notify.ForJob(notify.KindReceived, &job, ""); ok {
			s.notifier.Notify(n)
		}
	}

	return &job, nil
}

// markupOnly reports required fields that sanitizing left empty.
func markupOnly(clean Submission) error {
	var fields []FieldError
	if clean.Title == "" {
		fields = append(fields, FieldError{Field: "title", Message: "must contain text, not only markup"})
	}
	if clean.Description == "" {
		fields = append(fields, FieldError{Field: "description", Message: "must contain text, not only markup"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *Service) sanitizeSubmission(sub Submission) Submission {
	sub.Title = s.sanitizer.Inline(sub.Title)
	sub.CompanyName = s.sanitizer.Inline(sub.CompanyName)
	sub.Location = s.sanitizer.Inline(sub.Location)
	sub.SalaryText = s.sanitizer.Inline(sub.SalaryText)
	sub.JobTypeText = s.sanitizer.Inline(sub.JobTypeText)
	sub.CategoryText = s.sanitizer.Inline(sub.CategoryText)
	sub.Description = s.sanitizer.Text(sub.Description)
	sub.Requirements = s.sanitizer.Strings(sub.Requirements)
	sub.Benefits = s.sanitizer.Strings(sub.Benefits)
	sub.Skills = s.sanitizer.Strings(sub.Skills)
	sub.Contact = domain.ContactInfo{
		Phone: s.sanitizer.Inline(sub.Contact.Phone),
		Zalo:  s.sanitizer.Inline(sub.Contact.Zalo),
		Email: strings.ToLower(strings.TrimSpace(sub.Contact.Email)),
	}
	return sub
}

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New()
	})
	return validatorInst
}

// Validate checks mandatory fields, length caps and that at least one
// contact channel is present.
func Validate(sub Submission) error {
	var fields []FieldError

	trimmed := sub
	trimmed.Title = strings.TrimSpace(sub.Title)
	trimmed.Description = strings.TrimSpace(sub.Description)

	fields = append(fields, structErrors("", getValidator().Struct(trimmed))...)

	contact := contactRules{
		Phone: strings.TrimSpace(sub.Contact.Phone),
		Zalo:  strings.TrimSpace(sub.Contact.Zalo),
		Email: strings.TrimSpace(sub.Contact.Email),
	}
	fields = append(fields, structErrors("contact_info.", getValidator().Struct(contact))...)

	if contact.Phone == "" && contact.Zalo == "" && contact.Email == "" {
		fields = append(fields, FieldError{Field: "contact_info", Message: "at least one of phone, zalo or email is required"})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func structErrors(prefix string, err error) []FieldError {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: strings.TrimSuffix(prefix, "."), Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   prefix + toSnake(fe.Field()),
			Message: formatValidationMessage(fe),
		})
	}
	return out
}

func formatValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "field is required"
	case "max":
		return fmt.Sprintf("must not exceed %s", err.Param())
	case "email":
		return "must be a valid email address"
	default:
		return err.Error()
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
