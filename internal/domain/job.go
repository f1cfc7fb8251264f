package domain

import (
	"context"
	"errors"
	"time"
)

// Common domain errors
var (
	ErrNotFound        = errors.New("resource not found")
	ErrDuplicateRecord = errors.New("duplicate record")
)

// JobStatus is the publication state of a job.
type JobStatus string

const (
	JobStatusDraft     JobStatus = "draft"
	JobStatusPublished JobStatus = "published"
)

type Job struct {
	ID                  int64      `json:"id"`
	EmployerID          string     `json:"employer_id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Location            string     `json:"location"`
	EmploymentType      *string    `json:"employment_type"`
	SalaryMin           *float64   `json:"salary_min"`
	SalaryMax           *float64   `json:"salary_max"`
	SkillsRequired      []string   `json:"skills_required"`
	Status              JobStatus  `json:"status"`
	IsPublished         bool       `json:"is_published"`
	IsActive            bool       `json:"is_active"`
	ApplicationDeadline *time.Time `json:"application_deadline"`
	ApplicationCount    int        `json:"application_count"`
	ApplicationIDs      []int64    `json:"application_ids"`
	PublishedAt         *time.Time `json:"published_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	// Denormalized from the employer profile at creation time
	CompanyName    string  `json:"company_name"`
	CompanyLogoURL *string `json:"company_logo_url"`
	CompanyAddress *string `json:"company_address"`
	Industry       *string `json:"industry"`
}

// SetStatus moves the job to status and keeps the IsPublished/IsActive flags in
// sync. It reports whether this was the draft→published edge.
func (j *Job) SetStatus(status JobStatus, now time.Time) (publishedEdge bool) {
	wasPublished := j.Status == JobStatusPublished
	j.Status = status
	switch status {
	case JobStatusPublished:
		j.IsPublished = true
		j.IsActive = true
		if !wasPublished {
			j.PublishedAt = &now
			return true
		}
	default:
		j.IsPublished = false
		j.IsActive = false
	}
	return false
}

// AcceptingApplications reports whether the job is visible and open.
func (j *Job) AcceptingApplications() bool {
	return j.IsActive && j.IsPublished
}

// DeadlinePassed reports whether now is after the job's application deadline.
func (j *Job) DeadlinePassed(now time.Time) bool {
	return j.ApplicationDeadline != nil && now.After(*j.ApplicationDeadline)
}

// JobInput carries the editable fields of a job from the HTTP boundary.
type JobInput struct {
	Title               string
	Description         string
	Location            string
	EmploymentType      *string
	SalaryMin           *float64
	SalaryMax           *float64
	SkillsRequired      []string
	ApplicationDeadline *time.Time
	Status              JobStatus
}

type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id int64) (*Job, error)
	FetchByEmployerID(ctx context.Context, employerID string) ([]Job, error)
	Update(ctx context.Context, job *Job) error
	Delete(ctx context.Context, id int64) error
}

type JobUsecase interface {
	CreateJob(ctx context.Context, actor Actor, input JobInput) (*Job, error)
	UpdateJob(ctx context.Context, actor Actor, jobID int64, input JobInput) (*Job, error)
	PublishJob(ctx context.Context, actor Actor, jobID int64) (*Job, error)
	GetJob(ctx context.Context, id int64) (*Job, error)
	ListJobsByEmployer(ctx context.Context, actor Actor) ([]Job, error)
	DeleteJob(ctx context.Context, actor Actor, id int64) error
}
