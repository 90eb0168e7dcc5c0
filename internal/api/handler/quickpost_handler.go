package handler

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/jobfeed/internal/api/dto"
	"github.com/cuongbtq/jobfeed/internal/domain"
	"github.com/cuongbtq/jobfeed/internal/quickpost"
	"github.com/gin-gonic/gin"
)

// PosterIDKey is the gin context key holding the authenticated user id
const PosterIDKey = "poster_id"

// QuickPostHandler handles quick-post submissions
type QuickPostHandler struct {
	logger  *slog.Logger
	service QuickPostSubmitter
}

// NewQuickPostHandler creates a new QuickPostHandler instance
func NewQuickPostHandler(deps *Dependencies) *QuickPostHandler {
	return &QuickPostHandler{
		logger:  deps.Logger,
		service: deps.QuickPosts,
	}
}

// Create handles POST /api/v1/quick-posts
func (h *QuickPostHandler) Create(c *gin.Context) {
	var req dto.QuickPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	sub := quickpost.Submission{
		Title:        req.Title,
		CompanyName:  req.CompanyName,
		Location:     req.Location,
		SalaryText:   req.Salary,
		JobTypeText:  req.JobType,
		CategoryText: req.Category,
		Description:  req.Description,
		Requirements: req.Requirements,
		Benefits:     req.Benefits,
		Skills:       req.Skills,
		Contact: domain.ContactInfo{
			Phone: req.Contact.Phone,
			Zalo:  req.Contact.Zalo,
			Email: req.Contact.Email,
		},
		ExpiresAt: req.ExpiresAt,
		PosterID:  c.GetString(PosterIDKey),
	}

	job, err := h.service.Submit(c.Request.Context(), sub)
	if err != nil {
		respondError(c, h.logger, "Quick-post not accepted", err)
		return
	}

	h.logger.Info("Quick-post accepted",
		slog.String("job_id", job.ID),
		slog.Bool("authenticated", sub.PosterID != ""),
	)

	c.JSON(http.StatusCreated, dto.QuickPostResponse{
		Job:     dto.NewSubmittedJobDTO(job),
		Message: "Tin tuyển dụng đã được gửi và đang chờ kiểm duyệt",
	})
}
