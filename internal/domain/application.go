package domain

import (
	"context"
	"time"
)

// ApplicationStatus is the screening state of an application.
type ApplicationStatus string

const (
	ApplicationStatusPending     ApplicationStatus = "pending"
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	ApplicationStatusAccepted    ApplicationStatus = "accepted"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
)

// allowedTransitions lists the legal status changes.
// accepted and rejected are terminal.
var allowedTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusPending:     {ApplicationStatusShortlisted, ApplicationStatusAccepted, ApplicationStatusRejected},
	ApplicationStatusShortlisted: {ApplicationStatusAccepted, ApplicationStatusRejected},
}

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusShortlisted, ApplicationStatusAccepted, ApplicationStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further review is allowed.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusAccepted || s == ApplicationStatusRejected
}

// AllowsMessaging reports whether the two parties may talk in this state.
func (s ApplicationStatus) AllowsMessaging() bool {
	return s == ApplicationStatusShortlisted || s == ApplicationStatusAccepted
}

// CanTransition reports whether from → to is a legal status change.
// Same-status requests on a non-terminal application are allowed as no-ops.
func CanTransition(from, to ApplicationStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Application represents a jobseeker's application to one job
type Application struct {
	ID          int64             `json:"id"`
	JobID       int64             `json:"job_id"`
	JobseekerID string            `json:"jobseeker_id"`
	EmployerID  string            `json:"employer_id"` // Denormalized from the job at creation
	CoverLetter *string           `json:"cover_letter,omitempty"`
	ResumeURL   string            `json:"resume_url"`
	Status      ApplicationStatus `json:"status"` // pending → shortlisted → accepted / rejected
	Notes       *string           `json:"notes,omitempty"`
	AppliedAt   time.Time         `json:"applied_at"`
	ReviewedAt  *time.Time        `json:"reviewed_at,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`

	// Joined data for list responses
	JobTitle *string `json:"job_title,omitempty"`
}

// Involves reports whether userID is one of the two parties.
func (a *Application) Involves(userID string) bool {
	return a.JobseekerID == userID || a.EmployerID == userID
}

// SelectForMessaging picks the application that decides whether two users may
// talk: the newest one that allows messaging, else the newest one. apps must be
// ordered newest first. Returns nil for an empty list.
func SelectForMessaging(apps []Application) *Application {
	if len(apps) == 0 {
		return nil
	}
	for i := range apps {
		if apps[i].Status.AllowsMessaging() {
			return &apps[i]
		}
	}
	return &apps[0]
}

// StatusReview carries the result of a review action.
type StatusReview struct {
	Status     ApplicationStatus
	Notes      *string
	ReviewedAt time.Time
}

// ApplicationRepository defines data access methods for applications
type ApplicationRepository interface {
	// Create inserts the application and bumps the job's counter and id list
	// atomically. Returns ErrDuplicateRecord on a (job, jobseeker) collision.
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id int64) (*Application, error)
	GetByJobID(ctx context.Context, jobID int64) ([]Application, error)
	GetByJobseekerID(ctx context.Context, jobseekerID string) ([]Application, error)
	// ListBetween returns every application linking the two users in either
	// jobseeker/employer role, optionally narrowed to one job, newest first.
	ListBetween(ctx context.Context, userA, userB string, jobID *int64) ([]Application, error)
	UpdateReview(ctx context.Context, id int64, review StatusReview) error
}

// ApplicationUsecase defines business logic for applications
type ApplicationUsecase interface {
	// Jobseeker operations
	ApplyForJob(ctx context.Context, actor Actor, jobID int64, coverLetter string) (*Application, error)
	GetMyApplications(ctx context.Context, actor Actor) ([]Application, error)

	// Employer operations
	ListJobApplications(ctx context.Context, actor Actor, jobID int64) ([]Application, error)
	UpdateApplicationStatus(ctx context.Context, actor Actor, applicationID int64, status ApplicationStatus, notes *string) (*Application, error)

	// Either party
	GetApplication(ctx context.Context, actor Actor, applicationID int64) (*Application, error)
}
