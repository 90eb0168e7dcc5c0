package domain

import (
	"fmt"
	"strings"
	"time"
)

// Source values describe where a job record came from.
const (
	SourceCrawled   = "crawled"
	SourceQuickPost = "quick-post"
	SourceFeatured  = "featured"
)

// RawListing is a job posting as extracted from one crawled HTML document.
// Title and CompanyName are always non-empty; the extractor drops documents
// without them.
type RawListing struct {
	SourceURL    string   `json:"source_url"`
	Title        string   `json:"title"`
	CompanyName  string   `json:"company_name"`
	LogoURL      string   `json:"logo_url,omitempty"`
	LocationText string   `json:"location_text"`
	SalaryText   string   `json:"salary_text"`
	JobTypeText  string   `json:"job_type_text"`
	CategoryText string   `json:"category_text"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	Benefits     []string `json:"benefits"`
	Skills       []string `json:"skills"`
	ExpiryText   string   `json:"expiry_text,omitempty"`
	PostedText   string   `json:"posted_text,omitempty"`
	ContactEmail string   `json:"contact_email,omitempty"`
	ContactPhone string   `json:"contact_phone,omitempty"`
}

// ContactInfo is how a quick-post candidate or employer can be reached.
type ContactInfo struct {
	Phone string `json:"phone,omitempty"`
	Zalo  string `json:"zalo,omitempty"`
	Email string `json:"email,omitempty"`
}

// IsEmpty reports whether no contact channel is set.
func (c *ContactInfo) IsEmpty() bool {
	return c == nil || (c.Phone == "" && c.Zalo == "" && c.Email == "")
}

// NormalizedJob is the canonical persisted job record.
type NormalizedJob struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	CompanyName    string       `json:"company_name"`
	LogoURL        *string      `json:"logo_url,omitempty"`
	Location       string       `json:"location"`
	SalaryMin      *int64       `json:"salary_min"`
	SalaryMax      *int64       `json:"salary_max"`
	SalaryText     string       `json:"salary_text"`
	JobTypeID      string       `json:"job_type_id"`
	CategoryID     string       `json:"category_id"`
	Description    string       `json:"description"`
	Requirements   []string     `json:"requirements"`
	Benefits       []string     `json:"benefits"`
	Skills         []string     `json:"skills"`
	Source         string       `json:"source"`
	ExternalURL    *string      `json:"external_url,omitempty"`
	Status         Status       `json:"status"`
	IsVerified     bool         `json:"is_verified"`
	PosterID       *string      `json:"poster_id,omitempty"`
	SpamScore      *int         `json:"spam_score,omitempty"`
	ContactInfo    *ContactInfo `json:"contact_info,omitempty"`
	ModerationNote string       `json:"moderation_note,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	ExpiresAt      *time.Time   `json:"expires_at,omitempty"`
}

// ContactEmail returns the notification address of the record, if any.
func (j *NormalizedJob) ContactEmail() string {
	if j.ContactInfo == nil {
		return ""
	}
	return j.ContactInfo.Email
}

// Validate checks the record invariants that every persistence path relies on.
func (j *NormalizedJob) Validate() error {
	if strings.TrimSpace(j.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidJob)
	}

	if _, err := ParseStatus(string(j.Status)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}

	if j.Status == StatusActive && !j.IsVerified {
		return fmt.Errorf("%w: active job must be verified", ErrInvalidJob)
	}

	hasExternal := j.ExternalURL != nil && *j.ExternalURL != ""
	hasPoster := (j.PosterID != nil && *j.PosterID != "") || !j.ContactInfo.IsEmpty()

	switch j.Source {
	case SourceFeatured:
		return nil
	case SourceCrawled:
		if !hasExternal || hasPoster {
			return fmt.Errorf("%w: crawled job needs an external url and no poster", ErrInvalidJob)
		}
	case SourceQuickPost:
		if hasExternal || !hasPoster {
			return fmt.Errorf("%w: quick-post needs contact info and no external url", ErrInvalidJob)
		}
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidJob, j.Source)
	}

	return nil
}
