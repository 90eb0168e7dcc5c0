// Package storage persists normalized jobs.
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/cuongbtq/jobfeed/internal/domain"
	"github.com/cuongbtq/jobfeed/shared/postgresql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// Migrate creates the jobs table and its indexes when missing.
func Migrate(ctx context.Context, pg *postgresql.Client) error {
	if err := pg.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

const jobColumns = `
	job_id, title, company_name, logo_url, location,
	salary_min, salary_max, salary_text, job_type_id, category_id,
	description, requirements, benefits, skills, source, external_url,
	status, is_verified, poster_id, spam_score,
	contact_phone, contact_zalo, contact_email, moderation_note,
	created_at, updated_at, expires_at`

// jobRow is the database shape of a domain.NormalizedJob.
type jobRow struct {
	JobID          string         `db:"job_id"`
	Title          string         `db:"title"`
	CompanyName    string         `db:"company_name"`
	LogoURL        sql.NullString `db:"logo_url"`
	Location       string         `db:"location"`
	SalaryMin      sql.NullInt64  `db:"salary_min"`
	SalaryMax      sql.NullInt64  `db:"salary_max"`
	SalaryText     string         `db:"salary_text"`
	JobTypeID      string         `db:"job_type_id"`
	CategoryID     string         `db:"category_id"`
	Description    string         `db:"description"`
	Requirements   pq.StringArray `db:"requirements"`
	Benefits       pq.StringArray `db:"benefits"`
	Skills         pq.StringArray `db:"skills"`
	Source         string         `db:"source"`
	ExternalURL    sql.NullString `db:"external_url"`
	Status         string         `db:"status"`
	IsVerified     bool           `db:"is_verified"`
	PosterID       sql.NullString `db:"poster_id"`
	SpamScore      sql.NullInt32  `db:"spam_score"`
	ContactPhone   sql.NullString `db:"contact_phone"`
	ContactZalo    sql.NullString `db:"contact_zalo"`
	ContactEmail   sql.NullString `db:"contact_email"`
	ModerationNote string         `db:"moderation_note"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	ExpiresAt      sql.NullTime   `db:"expires_at"`
}

// PostgresStore implements domain.JobStore on PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a store on the shared client's pool
func NewPostgresStore(pg *postgresql.Client) *PostgresStore {
	return &PostgresStore{db: pg.GetDB()}
}

// Create inserts a job; a crawled job whose external URL already exists is
// skipped and created is false.
func (s *PostgresStore) Create(ctx context.Context, job *domain.NormalizedJob) (bool, error) {
	if err := job.Validate(); err != nil {
		return false, err
	}

	query := `
		INSERT INTO jobs (` + jobColumns + `)
		VALUES (
			:job_id, :title, :company_name, :logo_url, :location,
			:salary_min, :salary_max, :salary_text, :job_type_id, :category_id,
			:description, :requirements, :benefits, :skills, :source, :external_url,
			:status, :is_verified, :poster_id, :spam_score,
			:contact_phone, :contact_zalo, :contact_email, :moderation_note,
			:created_at, :updated_at, :expires_at
		)
		ON CONFLICT (external_url) WHERE external_url IS NOT NULL DO NOTHING
	`

	res, err := s.db.NamedExecContext(ctx, query, toRow(job))
	if err != nil {
		return false, fmt.Errorf("%w: failed to create job: %v", domain.ErrStoreUnavailable, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return n == 1, nil
}

// GetByID fetches one job
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*domain.NormalizedJob, error) {
	var row jobRow
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE job_id = $1`

	err := s.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get job: %v", domain.ErrStoreUnavailable, err)
	}

	return row.toDomain(), nil
}

// Update persists the moderation fields of a job still in status from
func (s *PostgresStore) Update(ctx context.Context, job *domain.NormalizedJob, from domain.Status) error {
	if err := job.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE jobs
		SET status = $2, is_verified = $3, moderation_note = $4, updated_at = $5
		WHERE job_id = $1 AND status = $6
	`

	res, err := s.db.ExecContext(ctx, query, job.ID, string(job.Status), job.IsVerified, job.ModerationNote, job.UpdatedAt, string(from))
	if err != nil {
		return fmt.Errorf("%w: failed to update job: %v", domain.ErrStoreUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return s.missedWrite(ctx, job.ID)
	}
	return nil
}

// Delete removes a job still in status from
func (s *PostgresStore) Delete(ctx context.Context, id string, from domain.Status) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE job_id = $1 AND status = $2`, id, string(from))
	if err != nil {
		return fmt.Errorf("%w: failed to delete job: %v", domain.ErrStoreUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return s.missedWrite(ctx, id)
	}
	return nil
}

// missedWrite tells a vanished row from one whose status moved on
func (s *PostgresStore) missedWrite(ctx context.Context, id string) error {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM jobs WHERE job_id = $1)`, id); err != nil {
		return fmt.Errorf("%w: failed to check job: %v", domain.ErrStoreUnavailable, err)
	}
	if exists {
		return domain.ErrStatusChanged
	}
	return domain.ErrJobNotFound
}

// List returns jobs newest first using keyset pagination. One extra row is
// fetched so the caller can tell whether another page exists.
func (s *PostgresStore) List(ctx context.Context, filter domain.JobFilter) ([]domain.NormalizedJob, error) {
	query, args := buildListQuery(filter)

	var rows []jobRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: failed to list jobs: %v", domain.ErrStoreUnavailable, err)
	}

	jobs := make([]domain.NormalizedJob, len(rows))
	for i := range rows {
		jobs[i] = *rows[i].toDomain()
	}
	return jobs, nil
}

func buildListQuery(filter domain.JobFilter) (string, []interface{}) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}

	if filter.Source != "" {
		query += fmt.Sprintf(" AND source = $%d", argIdx)
		args = append(args, filter.Source)
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, job_id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.JobID)
		argIdx += 2
	}

	query += " ORDER BY created_at DESC, job_id DESC"
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	return query, args
}

func toRow(j *domain.NormalizedJob) jobRow {
	row := jobRow{
		JobID:          j.ID,
		Title:          j.Title,
		CompanyName:    j.CompanyName,
		LogoURL:        nullString(j.LogoURL),
		Location:       j.Location,
		SalaryText:     j.SalaryText,
		JobTypeID:      j.JobTypeID,
		CategoryID:     j.CategoryID,
		Description:    j.Description,
		Requirements:   nonNil(j.Requirements),
		Benefits:       nonNil(j.Benefits),
		Skills:         nonNil(j.Skills),
		Source:         j.Source,
		ExternalURL:    nullString(j.ExternalURL),
		Status:         string(j.Status),
		IsVerified:     j.IsVerified,
		PosterID:       nullString(j.PosterID),
		ModerationNote: j.ModerationNote,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
	if j.SalaryMin != nil {
		row.SalaryMin = sql.NullInt64{Int64: *j.SalaryMin, Valid: true}
	}
	if j.SalaryMax != nil {
		row.SalaryMax = sql.NullInt64{Int64: *j.SalaryMax, Valid: true}
	}
	if j.SpamScore != nil {
		row.SpamScore = sql.NullInt32{Int32: int32(*j.SpamScore), Valid: true}
	}
	if c := j.ContactInfo; !c.IsEmpty() {
		row.ContactPhone = nullString(&c.Phone)
		row.ContactZalo = nullString(&c.Zalo)
		row.ContactEmail = nullString(&c.Email)
	}
	if j.ExpiresAt != nil {
		row.ExpiresAt = sql.NullTime{Time: *j.ExpiresAt, Valid: true}
	}
	return row
}

func (r *jobRow) toDomain() *domain.NormalizedJob {
	j := &domain.NormalizedJob{
		ID:             r.JobID,
		Title:          r.Title,
		CompanyName:    r.CompanyName,
		LogoURL:        stringPtr(r.LogoURL),
		Location:       r.Location,
		SalaryText:     r.SalaryText,
		JobTypeID:      r.JobTypeID,
		CategoryID:     r.CategoryID,
		Description:    r.Description,
		Requirements:   nonNil(r.Requirements),
		Benefits:       nonNil(r.Benefits),
		Skills:         nonNil(r.Skills),
		Source:         r.Source,
		ExternalURL:    stringPtr(r.ExternalURL),
		Status:         domain.Status(r.Status),
		IsVerified:     r.IsVerified,
		PosterID:       stringPtr(r.PosterID),
		ModerationNote: r.ModerationNote,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.SalaryMin.Valid {
		v := r.SalaryMin.Int64
		j.SalaryMin = &v
	}
	if r.SalaryMax.Valid {
		v := r.SalaryMax.Int64
		j.SalaryMax = &v
	}
	if r.SpamScore.Valid {
		v := int(r.SpamScore.Int32)
		j.SpamScore = &v
	}
	if r.ContactPhone.Valid || r.ContactZalo.Valid || r.ContactEmail.Valid {
		j.ContactInfo = &domain.ContactInfo{
			Phone: r.ContactPhone.String,
			Zalo:  r.ContactZalo.String,
			Email: r.ContactEmail.String,
		}
	}
	if r.ExpiresAt.Valid {
		v := r.ExpiresAt.Time
		j.ExpiresAt = &v
	}
	return j
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
