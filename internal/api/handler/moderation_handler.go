package handler

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/jobfeed/internal/api/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ModerationHandler handles the admin moderation endpoints
type ModerationHandler struct {
	logger  *slog.Logger
	service Moderator
}

// NewModerationHandler creates a new ModerationHandler instance
func NewModerationHandler(deps *Dependencies) *ModerationHandler {
	return &ModerationHandler{
		logger:  deps.Logger,
		service: deps.Moderation,
	}
}

// ListPending handles GET /api/v1/admin/jobs/pending
func (h *ModerationHandler) ListPending(c *gin.Context) {
	var req dto.ListPendingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid query parameters"})
		return
	}

	cursor, err := DecodeJobCursor(req.Cursor)
	if err != nil {
		h.logger.Info("Invalid cursor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid cursor"})
		return
	}

	page, err := h.service.ListPending(c.Request.Context(), req.PageSize, cursor)
	if err != nil {
		respondError(c, h.logger, "Failed to list pending jobs", err)
		return
	}

	jobs := make([]dto.JobDTO, len(page.Jobs))
	for i := range page.Jobs {
		jobs[i] = dto.NewJobDTO(&page.Jobs[i])
	}

	c.JSON(http.StatusOK, dto.ListJobsResponse{
		Jobs:       jobs,
		NextCursor: EncodeJobCursor(page.NextCursor),
	})
}

// Approve handles POST /api/v1/admin/jobs/:job_id/approve
func (h *ModerationHandler) Approve(c *gin.Context) {
	jobID, ok := h.jobID(c)
	if !ok {
		return
	}

	job, err := h.service.Approve(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, h.logger, "Failed to approve job", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewJobDTO(job))
}

// Reject handles POST /api/v1/admin/jobs/:job_id/reject
func (h *ModerationHandler) Reject(c *gin.Context) {
	jobID, ok := h.jobID(c)
	if !ok {
		return
	}

	var req dto.RejectRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
			return
		}
	}

	if err := h.service.Reject(c.Request.Context(), jobID, req.Reason); err != nil {
		respondError(c, h.logger, "Failed to reject job", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":  jobID,
		"status":  "rejected",
		"deleted": true,
	})
}

// Close handles POST /api/v1/admin/jobs/:job_id/close
func (h *ModerationHandler) Close(c *gin.Context) {
	jobID, ok := h.jobID(c)
	if !ok {
		return
	}

	job, err := h.service.Close(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, h.logger, "Failed to close job", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewJobDTO(job))
}

// jobID validates the :job_id path parameter
func (h *ModerationHandler) jobID(c *gin.Context) (string, bool) {
	jobID := c.Param("job_id")
	if _, err := uuid.Parse(jobID); err != nil {
		h.logger.Info("Invalid job_id format", slog.String("job_id", jobID))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "job_id must be a valid UUID"})
		return "", false
	}
	return jobID, true
}
