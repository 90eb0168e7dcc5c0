package dto

import (
	"time"

	"github.com/cuongbtq/jobfeed/internal/domain"
)

// ContactDTO is how a quick-post poster can be reached
type ContactDTO struct {
	Phone string `json:"phone"`
	Zalo  string `json:"zalo"`
	Email string `json:"email"`
}

// QuickPostRequest is the body of POST /api/v1/quick-posts. Field rules
// are enforced by the quick-post service so every client error carries
// the same field list shape.
type QuickPostRequest struct {
	Title        string     `json:"title"`
	CompanyName  string     `json:"company_name"`
	Location     string     `json:"location"`
	Salary       string     `json:"salary"`
	JobType      string     `json:"job_type"`
	Category     string     `json:"category"`
	Description  string     `json:"description"`
	Requirements []string   `json:"requirements"`
	Benefits     []string   `json:"benefits"`
	Skills       []string   `json:"skills"`
	Contact      ContactDTO `json:"contact_info"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

// QuickPostResponse acknowledges an accepted submission
type QuickPostResponse struct {
	Job     SubmittedJobDTO `json:"job"`
	Message string          `json:"message"`
}

// RejectRequest is the body of the reject endpoint
type RejectRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ListPendingRequest holds pending queue query parameters
type ListPendingRequest struct {
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Cursor   string `form:"cursor"`
}

// ListJobsResponse is one cursor page of jobs
type ListJobsResponse struct {
	Jobs       []JobDTO `json:"jobs"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields,omitempty"`
	Score  *int         `json:"score,omitempty"`
	Reason string       `json:"reason,omitempty"`
}

// FieldError names one invalid request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// JobDTO is the API view of a NormalizedJob
type JobDTO struct {
	JobID          string              `json:"job_id"`
	Title          string              `json:"title"`
	CompanyName    string              `json:"company_name"`
	LogoURL        *string             `json:"logo_url,omitempty"`
	Location       string              `json:"location"`
	SalaryMin      *int64              `json:"salary_min"`
	SalaryMax      *int64              `json:"salary_max"`
	SalaryText     string              `json:"salary_text"`
	JobTypeID      string              `json:"job_type_id"`
	CategoryID     string              `json:"category_id"`
	Description    string              `json:"description"`
	Requirements   []string            `json:"requirements"`
	Benefits       []string            `json:"benefits"`
	Skills         []string            `json:"skills"`
	Source         string              `json:"source"`
	ExternalURL    *string             `json:"external_url,omitempty"`
	Status         string              `json:"status"`
	IsVerified     bool                `json:"is_verified"`
	SpamScore      *int                `json:"spam_score,omitempty"`
	ContactInfo    *domain.ContactInfo `json:"contact_info,omitempty"`
	ModerationNote string              `json:"moderation_note,omitempty"`
	CreatedAt      string              `json:"created_at"`
	UpdatedAt      string              `json:"updated_at"`
	ExpiresAt      *string             `json:"expires_at,omitempty"`
}

// NewJobDTO converts a domain job for output
func NewJobDTO(job *domain.NormalizedJob) JobDTO {
	out := JobDTO{
		JobID:          job.ID,
		Title:          job.Title,
		CompanyName:    job.CompanyName,
		LogoURL:        job.LogoURL,
		Location:       job.Location,
		SalaryMin:      job.SalaryMin,
		SalaryMax:      job.SalaryMax,
		SalaryText:     job.SalaryText,
		JobTypeID:      job.JobTypeID,
		CategoryID:     job.CategoryID,
		Description:    job.Description,
		Requirements:   nonNil(job.Requirements),
		Benefits:       nonNil(job.Benefits),
		Skills:         nonNil(job.Skills),
		Source:         job.Source,
		ExternalURL:    job.ExternalURL,
		Status:         string(job.Status),
		IsVerified:     job.IsVerified,
		SpamScore:      job.SpamScore,
		ContactInfo:    job.ContactInfo,
		ModerationNote: job.ModerationNote,
		CreatedAt:      job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      job.UpdatedAt.Format(time.RFC3339),
	}
	if job.ExpiresAt != nil {
		s := job.ExpiresAt.Format(time.RFC3339)
		out.ExpiresAt = &s
	}
	return out
}

// SubmittedJobDTO is the poster's view of a submission. Spam score and
// moderation notes stay admin-only.
type SubmittedJobDTO struct {
	JobID        string              `json:"job_id"`
	Title        string              `json:"title"`
	CompanyName  string              `json:"company_name"`
	Location     string              `json:"location"`
	SalaryMin    *int64              `json:"salary_min"`
	SalaryMax    *int64              `json:"salary_max"`
	SalaryText   string              `json:"salary_text"`
	JobTypeID    string              `json:"job_type_id"`
	CategoryID   string              `json:"category_id"`
	Description  string              `json:"description"`
	Requirements []string            `json:"requirements"`
	Benefits     []string            `json:"benefits"`
	Skills       []string            `json:"skills"`
	Source       string              `json:"source"`
	Status       string              `json:"status"`
	ContactInfo  *domain.ContactInfo `json:"contact_info,omitempty"`
	CreatedAt    string              `json:"created_at"`
	ExpiresAt    *string             `json:"expires_at,omitempty"`
}

// NewSubmittedJobDTO converts a freshly submitted job for its poster
func NewSubmittedJobDTO(job *domain.NormalizedJob) SubmittedJobDTO {
	full := NewJobDTO(job)
	return SubmittedJobDTO{
		JobID:        full.JobID,
		Title:        full.Title,
		CompanyName:  full.CompanyName,
		Location:     full.Location,
		SalaryMin:    full.SalaryMin,
		SalaryMax:    full.SalaryMax,
		SalaryText:   full.SalaryText,
		JobTypeID:    full.JobTypeID,
		CategoryID:   full.CategoryID,
		Description:  full.Description,
		Requirements: full.Requirements,
		Benefits:     full.Benefits,
		Skills:       full.Skills,
		Source:       full.Source,
		Status:       full.Status,
		ContactInfo:  full.ContactInfo,
		CreatedAt:    full.CreatedAt,
		ExpiresAt:    full.ExpiresAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
