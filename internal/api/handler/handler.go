package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/jobfeed/internal/api/dto"
	"github.com/cuongbtq/jobfeed/internal/domain"
	"github.com/cuongbtq/jobfeed/internal/moderation"
	"github.com/cuongbtq/jobfeed/internal/quickpost"
	"github.com/gin-gonic/gin"
)

// QuickPostSubmitter accepts quick-post submissions
type QuickPostSubmitter interface {
	Submit(ctx context.Context, sub quickpost.Submission) (*domain.NormalizedJob, error)
}

// Moderator drives the moderation queue
type Moderator interface {
	ListPending(ctx context.Context, pageSize int, cursor *domain.JobCursor) (*moderation.PendingPage, error)
	Approve(ctx context.Context, id string) (*domain.NormalizedJob, error)
	Reject(ctx context.Context, id, reason string) error
	Close(ctx context.Context, id string) (*domain.NormalizedJob, error)
}

// HealthChecker reports the health of one backing service
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger      *slog.Logger
	ServiceName string
	QuickPosts  QuickPostSubmitter
	Moderation  Moderator
	// Health maps a component name to its checker. Failures of components
	// listed in Critical turn the response into 503.
	Health   map[string]HealthChecker
	Critical []string
}

// errorStatus maps service errors to an HTTP status and response body
func errorStatus(err error) (int, dto.ErrorResponse) {
	var validationErr *quickpost.ValidationError
	var spamErr *quickpost.SpamRejectedError

	switch {
	case errors.As(err, &validationErr):
		fields := make([]dto.FieldError, len(validationErr.Fields))
		for i, f := range validationErr.Fields {
			fields[i] = dto.FieldError{Field: f.Field, Message: f.Message}
		}
		return http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid submission", Fields: fields}
	case errors.As(err, &spamErr):
		score := spamErr.Score
		return http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error:  "Submission rejected as spam",
			Score:  &score,
			Reason: spamErr.Reason,
		}
	case errors.Is(err, domain.ErrJobNotFound):
		return http.StatusNotFound, dto.ErrorResponse{Error: "Job not found"}
	case errors.Is(err, moderation.ErrInvalidTransition):
		return http.StatusConflict, dto.ErrorResponse{Error: err.Error()}
	default:
		return http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"}
	}
}

// respondError logs server-side failures and writes the mapped response
func respondError(c *gin.Context, logger *slog.Logger, msg string, err error) {
	status, body := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg,
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
		_ = c.Error(err)
	} else {
		logger.Info(msg,
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	c.JSON(status, body)
}
