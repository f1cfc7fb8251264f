package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"gradhire-backend/internal/domain"
	"gradhire-backend/pkg/apperror"
	"gradhire-backend/pkg/eventlog"
)

type applicationUsecase struct {
	applicationRepo domain.ApplicationRepository
	jobRepo         domain.JobRepository
	profiles        domain.ProfileStore
	effects         sideEffects
}

// NewApplicationUsecase creates a new application usecase
func NewApplicationUsecase(
	appRepo domain.ApplicationRepository,
	jobRepo domain.JobRepository,
	profiles domain.ProfileStore,
	publisher domain.EventPublisher,
	events *eventlog.Logger,
) domain.ApplicationUsecase {
	return &applicationUsecase{
		applicationRepo: appRepo,
		jobRepo:         jobRepo,
		profiles:        profiles,
		effects:         newSideEffects(publisher, events),
	}
}

// ApplyForJob submits the caller's application. Duplicates are caught by the
// store's (job, jobseeker) constraint, never by a lookup beforehand.
func (uc *applicationUsecase) ApplyForJob(ctx context.Context, actor domain.Actor, jobID int64, coverLetter string) (*domain.Application, error) {
	// 1. Only jobseekers apply
	if !actor.IsJobseeker() {
		return nil, apperror.Authorization(apperror.CodeRoleNotAllowed, "Only jobseekers can apply for jobs")
	}

	// 2. Job exists and is open
	job, err := uc.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFoundOr(err, apperror.CodeJobNotFound, "Job not found")
	}
	if !job.AcceptingApplications() {
		return nil, apperror.State(apperror.CodeJobNotOpen, "This job is not accepting applications")
	}

	now := time.Now()
	if job.DeadlinePassed(now) {
		return nil, apperror.State(apperror.CodeApplicationDeadline, "The application deadline for this job has passed")
	}

	// 3. Resume on file
	profile, err := uc.profiles.GetJobseeker(ctx, actor.ID)
	if err != nil {
		return nil, notFoundOr(err, apperror.CodeProfileNotFound, "Jobseeker profile not found")
	}
	if strings.TrimSpace(profile.ResumeURL) == "" {
		return nil, apperror.Validation(apperror.CodeResumeRequired, "Upload a resume before applying")
	}

	app := &domain.Application{
		JobID:       job.ID,
		JobseekerID: actor.ID,
		EmployerID:  job.EmployerID,
		ResumeURL:   profile.ResumeURL,
		Status:      domain.ApplicationStatusPending,
		AppliedAt:   now,
		UpdatedAt:   now,
		JobTitle:    &job.Title,
	}
	if letter := strings.TrimSpace(coverLetter); letter != "" {
		app.CoverLetter = &letter
	}

	// 4. Insert, counter bump and id append happen in one transaction
	if err := uc.applicationRepo.Create(ctx, app); err != nil {
		if errors.Is(err, domain.ErrDuplicateRecord) {
			return nil, apperror.Conflict(apperror.CodeDuplicateApplication, "You have already applied to this job")
		}
		return nil, apperror.Internal(err)
	}

	uc.effects.events.Log(ctx, eventlog.Record{
		Event:       eventlog.EventApplicationSubmitted,
		SubjectType: "application",
		SubjectID:   formatID(app.ID),
		ActorID:     actor.ID,
		Details:     map[string]any{"job_id": job.ID},
	})
	return app, nil
}

// GetMyApplications returns all applications of the calling jobseeker
func (uc *applicationUsecase) GetMyApplications(ctx context.Context, actor domain.Actor) ([]domain.Application, error) {
	if !actor.IsJobseeker() {
		return nil, apperror.Authorization(apperror.CodeRoleNotAllowed, "Only jobseekers have applications")
	}
	apps, err := uc.applicationRepo.GetByJobseekerID(ctx, actor.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return apps, nil
}

// ListJobApplications returns applications for a job owned by the calling employer
func (uc *applicationUsecase) ListJobApplications(ctx context.Context, actor domain.Actor, jobID int64) ([]domain.Application, error) {
	if !actor.IsEmployer() {
		return nil, apperror.Authorization(apperror.CodeRoleNotAllowed, "Only employers can view job applicants")
	}
	job, err := uc.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFoundOr(err, apperror.CodeJobNotFound, "Job not found")
	}
	if job.EmployerID != actor.ID {
		return nil, apperror.Authorization(apperror.CodeNotJobOwner, "You can only view applicants for your own jobs")
	}

	apps, err := uc.applicationRepo.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return apps, nil
}

// UpdateApplicationStatus records an employer review. The status change event
// is emitted only when the status value actually changes.
func (uc *applicationUsecase) UpdateApplicationStatus(ctx context.Context, actor domain.Actor, applicationID int64, status domain.ApplicationStatus, notes *string) (*domain.Application, error) {
	if !actor.IsEmployer() {
		return nil, apperror.Authorization(apperror.CodeRoleNotAllowed, "Only employers can review applications")
	}

	app, err := uc.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, notFoundOr(err, apperror.CodeApplicationNotFound, "Application not found")
	}
	if app.EmployerID != actor.ID {
		return nil, apperror.Authorization(apperror.CodeNotApplicationOwner, "You can only review applications to your own jobs")
	}
	if !status.Valid() {
		return nil, apperror.Validation(apperror.CodeInvalidStatus, "Status must be one of: pending, shortlisted, accepted, rejected")
	}
	if app.Status.IsTerminal() {
		return nil, apperror.State(apperror.CodeApplicationFinalized, "Application is already "+string(app.Status))
	}
	if !domain.CanTransition(app.Status, status) {
		return nil, apperror.State(apperror.CodeInvalidTransition, "Cannot move application from "+string(app.Status)+" to "+string(status))
	}

	now := time.Now()
	review := domain.StatusReview{Status: status, Notes: notes, ReviewedAt: now}
	if err := uc.applicationRepo.UpdateReview(ctx, app.ID, review); err != nil {
		return nil, notFoundOr(err, apperror.CodeApplicationNotFound, "Application not found")
	}

	oldStatus := app.Status
	app.Status = status
	app.ReviewedAt = &now
	app.UpdatedAt = now
	if notes != nil {
		app.Notes = notes
	}

	if oldStatus == status {
		return app, nil
	}

	uc.effects.events.Log(ctx, eventlog.Record{
		Event:       eventlog.EventApplicationReviewed,
		SubjectType: "application",
		SubjectID:   formatID(app.ID),
		ActorID:     actor.ID,
		Details:     map[string]any{"from": oldStatus, "to": status},
	})
	uc.effects.applicationStatusChanged(ctx, domain.ApplicationStatusChanged{
		EventID:       newEventID(),
		ApplicationID: app.ID,
		JobID:         app.JobID,
		JobseekerID:   app.JobseekerID,
		EmployerID:    app.EmployerID,
		OldStatus:     oldStatus,
		NewStatus:     status,
		Notes:         notes,
		OccurredAt:    now,
	})
	return app, nil
}

// GetApplication returns an application to either of its two parties
func (uc *applicationUsecase) GetApplication(ctx context.Context, actor domain.Actor, applicationID int64) (*domain.Application, error) {
	app, err := uc.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, notFoundOr(err, apperror.CodeApplicationNotFound, "Application not found")
	}
	if !app.Involves(actor.ID) {
		return nil, apperror.Authorization(apperror.CodeNotParticipant, "You are not a party to this application")
	}
	return app, nil
}
