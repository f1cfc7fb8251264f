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

type jobUsecase struct {
	jobRepo       domain.JobRepository
	profiles      domain.ProfileStore
	verifications domain.VerificationStore
	effects       sideEffects
}

func NewJobUsecase(
	jobRepo domain.JobRepository,
	profiles domain.ProfileStore,
	verifications domain.VerificationStore,
	publisher domain.EventPublisher,
	events *eventlog.Logger,
) domain.JobUsecase {
	return &jobUsecase{
		jobRepo:       jobRepo,
		profiles:      profiles,
		verifications: verifications,
		effects:       newSideEffects(publisher, events),
	}
}

func validateJobInput(input domain.JobInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return apperror.Validation(apperror.CodeInvalidInput, "Title is required")
	}
	if input.SalaryMin != nil && input.SalaryMax != nil && *input.SalaryMin > *input.SalaryMax {
		return apperror.Validation(apperror.CodeInvalidInput, "SalaryMin cannot be greater than SalaryMax")
	}
	switch input.Status {
	case "", domain.JobStatusDraft, domain.JobStatusPublished:
	default:
		return apperror.Validation(apperror.CodeInvalidStatus, "Status must be draft or published")
	}
	return nil
}

func applyJobInput(job *domain.Job, input domain.JobInput) {
	job.Title = strings.TrimSpace(input.Title)
	job.Description = input.Description
	job.Location = input.Location
	job.EmploymentType = input.EmploymentType
	job.SalaryMin = input.SalaryMin
	job.SalaryMax = input.SalaryMax
	job.SkillsRequired = cleanSkills(input.SkillsRequired)
	job.ApplicationDeadline = input.ApplicationDeadline
}

// checkPublishable is the publication gate. It always derives the status from
// the documents rather than trusting a stored value.
func (u *jobUsecase) checkPublishable(ctx context.Context, employerID string) error {
	v, err := u.verifications.GetByEmployerID(ctx, employerID)
	if err != nil {
		return apperror.Internal(err)
	}
	if !domain.CanPublish(v.Docs) {
		return apperror.State(apperror.CodeEmployerNotVerified,
			"Employer verification must be approved before publishing jobs (current status: "+string(domain.DeriveOverallStatus(v.Docs))+")")
	}
	return nil
}

func (u *jobUsecase) loadOwnedJob(ctx context.Context, actor domain.Actor, jobID int64) (*domain.Job, error) {
	if !actor.IsEmployer() {
		return nil, apperror.Authorization(apperror.CodeRoleNotAllowed, "Only employers can manage jobs")
	}
	job, err := u.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFoundOr(err, apperror.CodeJobNotFound, "Job not found")
	}
	if job.EmployerID != actor.ID {
		return nil, apperror.Authorization(apperror.CodeNotJobOwner, "You can only manage your own jobs")
	}
	return job, nil
}

// emitIfPublished fires JobPublished on the draft→published edge only.
func (u *jobUsecase) emitIfPublished(ctx context.Context, job *domain.Job, edge bool) {
	if !edge {
		return
	}
	u.effects.events.Log(ctx, eventlog.Record{
		Event:       eventlog.EventJobPublished,
		SubjectType: "job",
		SubjectID:   formatID(job.ID),
		ActorID:     job.EmployerID,
		Details:     map[string]any{"skills": len(job.SkillsRequired)},
	})
	u.effects.jobPublished(ctx, domain.JobPublished{
		EventID:    newEventID(),
		JobID:      job.ID,
		EmployerID: job.EmployerID,
		OccurredAt: *job.PublishedAt,
	})
}

func (u *jobUsecase) CreateJob(ctx context.Context, actor domain.Actor, input domain.JobInput) (*domain.Job, error) {
	if !actor.IsEmployer() {
		return nil, apperror.Authorization(apperror.CodeRoleNotAllowed, "Only employers can post jobs")
	}
	if err := validateJobInput(input); err != nil {
		return nil, err
	}

	profile, err := u.profiles.GetEmployer(ctx, actor.ID)
	if err != nil {
		return nil, notFoundOr(err, apperror.CodeProfileNotFound, "Employer profile not found. Please create a company profile first.")
	}

	status := input.Status
	if status == "" {
		status = domain.JobStatusDraft
	}
	if status == domain.JobStatusPublished {
		if err := u.checkPublishable(ctx, actor.ID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	job := &domain.Job{
		EmployerID:     actor.ID,
		Status:         domain.JobStatusDraft,
		ApplicationIDs: []int64{},
		CreatedAt:      now,
		UpdatedAt:      now,
		CompanyName:    profile.CompanyName,
		CompanyLogoURL: profile.LogoURL,
		CompanyAddress: profile.Address,
		Industry:       profile.Industry,
	}
	applyJobInput(job, input)
	edge := job.SetStatus(status, now)

	if err := u.jobRepo.Create(ctx, job); err != nil {
		return nil, apperror.Internal(err)
	}

	u.emitIfPublished(ctx, job, edge)
	return job, nil
}

func (u *jobUsecase) UpdateJob(ctx context.Context, actor domain.Actor, jobID int64, input domain.JobInput) (*domain.Job, error) {
	if err := validateJobInput(input); err != nil {
		return nil, err
	}
	job, err := u.loadOwnedJob(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = job.Status
	}
	if status == domain.JobStatusPublished && job.Status != domain.JobStatusPublished {
		if err := u.checkPublishable(ctx, actor.ID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	wasPublished := job.Status == domain.JobStatusPublished
	applyJobInput(job, input)
	edge := job.SetStatus(status, now)
	job.UpdatedAt = now

	if err := u.jobRepo.Update(ctx, job); err != nil {
		return nil, notFoundOr(err, apperror.CodeJobNotFound, "Job not found")
	}

	if wasPublished && status == domain.JobStatusDraft {
		u.effects.events.Log(ctx, eventlog.Record{
			Event:       eventlog.EventJobUnpublished,
			SubjectType: "job",
			SubjectID:   formatID(job.ID),
			ActorID:     actor.ID,
		})
	}
	u.emitIfPublished(ctx, job, edge)
	return job, nil
}

// PublishJob moves an existing job into published without touching its fields.
// Publishing an already published job is a no-op and does not fan out again.
func (u *jobUsecase) PublishJob(ctx context.Context, actor domain.Actor, jobID int64) (*domain.Job, error) {
	job, err := u.loadOwnedJob(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status == domain.JobStatusPublished {
		return job, nil
	}
	if err := u.checkPublishable(ctx, actor.ID); err != nil {
		return nil, err
	}

	now := time.Now()
	edge := job.SetStatus(domain.JobStatusPublished, now)
	job.UpdatedAt = now
	if err := u.jobRepo.Update(ctx, job); err != nil {
		return nil, notFoundOr(err, apperror.CodeJobNotFound, "Job not found")
	}

	u.emitIfPublished(ctx, job, edge)
	return job, nil
}

func (u *jobUsecase) GetJob(ctx context.Context, id int64) (*domain.Job, error) {
	job, err := u.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, apperror.CodeJobNotFound, "Job not found")
	}
	return job, nil
}

// ListJobsByEmployer returns every job owned by the calling employer
func (u *jobUsecase) ListJobsByEmployer(ctx context.Context, actor domain.Actor) ([]domain.Job, error) {
	if !actor.IsEmployer() {
		return nil, apperror.Authorization(apperror.CodeRoleNotAllowed, "Only employers have job listings")
	}
	jobs, err := u.jobRepo.FetchByEmployerID(ctx, actor.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return jobs, nil
}

func (u *jobUsecase) DeleteJob(ctx context.Context, actor domain.Actor, id int64) error {
	if _, err := u.loadOwnedJob(ctx, actor, id); err != nil {
		return err
	}
	if err := u.jobRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.Missing(apperror.CodeJobNotFound, "Job not found")
		}
		return apperror.Internal(err)
	}
	return nil
}
