package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gradhire-backend/internal/domain"
	"gradhire-backend/internal/metrics"
	"gradhire-backend/pkg/apperror"
	"gradhire-backend/pkg/eventlog"
	"gradhire-backend/pkg/logger"

	"github.com/cenkalti/backoff/v4"
)

// NotificationPolicy holds the dedup windows and fan-out tuning.
type NotificationPolicy struct {
	JobMatchDedupWindow time.Duration
	MessageMergeWindow  time.Duration
	FanOutBatchSize     int
	// FanOutMaxRetries is the number of retries after the first attempt.
	FanOutMaxRetries     uint64
	RetryInitialInterval time.Duration
}

// DefaultNotificationPolicy: 24h job-match suppression, 10m message merge,
// batches of 500 and three attempts per candidate write.
func DefaultNotificationPolicy() NotificationPolicy {
	return NotificationPolicy{
		JobMatchDedupWindow:  24 * time.Hour,
		MessageMergeWindow:   10 * time.Minute,
		FanOutBatchSize:      500,
		FanOutMaxRetries:     2,
		RetryInitialInterval: 200 * time.Millisecond,
	}
}

type notificationUsecase struct {
	notifRepo domain.NotificationRepository
	jobRepo   domain.JobRepository
	profiles  domain.ProfileStore
	policy    NotificationPolicy
	events    *eventlog.Logger
}

func NewNotificationUsecase(
	notifRepo domain.NotificationRepository,
	jobRepo domain.JobRepository,
	profiles domain.ProfileStore,
	policy NotificationPolicy,
	events *eventlog.Logger,
) domain.NotificationUsecase {
	if events == nil {
		events = eventlog.Nop()
	}
	defaults := DefaultNotificationPolicy()
	if policy.FanOutBatchSize <= 0 {
		policy.FanOutBatchSize = defaults.FanOutBatchSize
	}
	if policy.RetryInitialInterval <= 0 {
		policy.RetryInitialInterval = defaults.RetryInitialInterval
	}
	return &notificationUsecase{
		notifRepo: notifRepo,
		jobRepo:   jobRepo,
		profiles:  profiles,
		policy:    policy,
		events:    events,
	}
}

// Notify applies the per-type policy:
//   - job_match is suppressed if the same (user, related) pair got one within the dedup window
//   - new_message folds into an unread notification from the same sender within the merge window
//   - everything else is inserted as is
//
// Store failures come back as dependency errors.
func (u *notificationUsecase) Notify(ctx context.Context, n *domain.Notification) (domain.NotifyOutcome, error) {
	if n.UserID == "" {
		return "", apperror.Validation(apperror.CodeInvalidInput, "notification recipient is required")
	}
	now := time.Now()
	n.CreatedAt = now
	n.UpdatedAt = now
	if n.Metadata == nil {
		n.Metadata = map[string]any{}
	}

	var (
		outcome domain.NotifyOutcome
		err     error
	)
	switch n.Type {
	case domain.NotificationJobMatch:
		outcome, err = u.notifyJobMatch(ctx, n, now)
	case domain.NotificationNewMessage:
		outcome, err = u.notifyNewMessage(ctx, n, now)
	default:
		outcome, err = domain.NotifyCreated, u.notifRepo.Create(ctx, n)
	}
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return "", err
		}
		metrics.NotificationWrites.WithLabelValues(string(n.Type), "error").Inc()
		return "", apperror.Dependency(apperror.CodeNotificationWriteFailed, err)
	}

	metrics.NotificationWrites.WithLabelValues(string(n.Type), string(outcome)).Inc()
	return outcome, nil
}

func (u *notificationUsecase) notifyJobMatch(ctx context.Context, n *domain.Notification, now time.Time) (domain.NotifyOutcome, error) {
	if n.Related == nil {
		return "", apperror.Validation(apperror.CodeInvalidInput, "job_match notification needs a related job")
	}
	exists, err := u.notifRepo.ExistsSince(ctx, n.UserID, domain.NotificationJobMatch, n.Related, now.Add(-u.policy.JobMatchDedupWindow))
	if err != nil {
		return "", err
	}
	if exists {
		return domain.NotifySuppressed, nil
	}
	return domain.NotifyCreated, u.notifRepo.Create(ctx, n)
}

func (u *notificationUsecase) notifyNewMessage(ctx context.Context, n *domain.Notification, now time.Time) (domain.NotifyOutcome, error) {
	if n.ActorID == nil || *n.ActorID == "" {
		return "", apperror.Validation(apperror.CodeInvalidInput, "new_message notification needs a sender")
	}

	existing, err := u.notifRepo.FindUnreadFromActor(ctx, n.UserID, *n.ActorID, domain.NotificationNewMessage, now.Add(-u.policy.MessageMergeWindow))
	if err != nil {
		return "", err
	}
	if existing == nil {
		n.Metadata["message_count"] = 1
		return domain.NotifyCreated, u.notifRepo.Create(ctx, n)
	}

	count := messageCount(existing.Metadata) + 1
	if existing.Metadata == nil {
		existing.Metadata = map[string]any{}
	}
	for k, v := range n.Metadata {
		existing.Metadata[k] = v
	}
	existing.Metadata["message_count"] = count
	existing.Title = n.Title
	existing.Message = n.Message
	existing.Related = n.Related
	existing.UpdatedAt = now

	if err := u.notifRepo.UpdateContent(ctx, existing); err != nil {
		return "", err
	}
	*n = *existing
	return domain.NotifyMerged, nil
}

// messageCount reads the counter back from JSON metadata, where numbers
// decode as float64.
func messageCount(meta map[string]any) int {
	switch v := meta["message_count"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 1
}

// FanOutJobMatches scans active jobseekers in keyset batches and notifies each
// one whose skills match the job. A failing candidate is counted and skipped.
func (u *notificationUsecase) FanOutJobMatches(ctx context.Context, jobID int64) (*domain.FanOutReport, error) {
	report := &domain.FanOutReport{JobID: jobID}

	job, err := u.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return report, notFoundOr(err, apperror.CodeJobNotFound, "Job not found")
	}
	// The job may have gone back to draft before the event was handled
	if !job.IsPublished || len(domain.NormalizeSkills(job.SkillsRequired)) == 0 {
		return report, nil
	}

	after := ""
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		var batch []domain.JobseekerProfile
		err := backoff.Retry(func() error {
			var listErr error
			batch, listErr = u.profiles.ListActiveJobseekersWithSkills(ctx, after, u.policy.FanOutBatchSize)
			return listErr
		}, u.retryPolicy(ctx))
		if err != nil {
			return report, apperror.Internal(fmt.Errorf("list jobseekers after %q: %w", after, err))
		}

		for _, candidate := range batch {
			u.notifyCandidate(ctx, job, candidate, report)
		}

		if len(batch) < u.policy.FanOutBatchSize {
			break
		}
		after = batch[len(batch)-1].UserID
	}

	metrics.FanOutRuns.Inc()
	u.events.Log(ctx, eventlog.Record{
		Event:       eventlog.EventFanOutCompleted,
		SubjectType: "job",
		SubjectID:   formatID(job.ID),
		Details: map[string]any{
			"scanned":    report.Scanned,
			"matched":    report.Matched,
			"notified":   report.Notified,
			"duplicates": report.Duplicates,
			"failed":     report.Failed,
		},
	})
	return report, nil
}

func (u *notificationUsecase) notifyCandidate(ctx context.Context, job *domain.Job, candidate domain.JobseekerProfile, report *domain.FanOutReport) {
	report.Scanned++

	matches := domain.ScoreSkillMatch(job.SkillsRequired, candidate.Skills)
	if len(matches) == 0 {
		metrics.FanOutCandidates.WithLabelValues(metrics.ResultNoMatch).Inc()
		return
	}
	report.Matched++

	matched := domain.MatchedSkillNames(matches)
	var outcome domain.NotifyOutcome
	err := backoff.Retry(func() error {
		n := &domain.Notification{
			UserID:  candidate.UserID,
			Type:    domain.NotificationJobMatch,
			Title:   "New job match",
			Message: domain.JobMatchMessage(job.Title, job.CompanyName, matched),
			Related: domain.JobRef{JobID: job.ID},
			Metadata: map[string]any{
				"matched_skills": matched,
				"match_count":    len(matched),
				"job_title":      job.Title,
				"company_name":   job.CompanyName,
			},
		}
		var notifyErr error
		outcome, notifyErr = u.Notify(ctx, n)
		if notifyErr != nil && !apperror.IsKind(notifyErr, apperror.KindDependency) {
			return backoff.Permanent(notifyErr)
		}
		return notifyErr
	}, u.retryPolicy(ctx))

	switch {
	case err != nil:
		report.Failed++
		metrics.FanOutCandidates.WithLabelValues(metrics.ResultFailed).Inc()
		logger.Log.WarnContext(ctx, "job match notification failed",
			"job_id", job.ID,
			"user_id", candidate.UserID,
			"error", err,
		)
		u.events.Failure(ctx, eventlog.EventNotificationFailed, "job", formatID(job.ID), err,
			map[string]any{"notification_type": domain.NotificationJobMatch})
	case outcome == domain.NotifySuppressed:
		report.Duplicates++
		metrics.FanOutCandidates.WithLabelValues(metrics.ResultDuplicate).Inc()
	default:
		report.Notified++
		metrics.FanOutCandidates.WithLabelValues(metrics.ResultNotified).Inc()
	}
}

func (u *notificationUsecase) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = u.policy.RetryInitialInterval
	return backoff.WithContext(backoff.WithMaxRetries(b, u.policy.FanOutMaxRetries), ctx)
}

func (u *notificationUsecase) HandleJobPublished(ctx context.Context, e domain.JobPublished) error {
	_, err := u.FanOutJobMatches(ctx, e.JobID)
	return err
}

// HandleApplicationStatusChanged notifies the jobseeker about a review outcome.
func (u *notificationUsecase) HandleApplicationStatusChanged(ctx context.Context, e domain.ApplicationStatusChanged) error {
	jobTitle := "a job"
	if job, err := u.jobRepo.GetByID(ctx, e.JobID); err == nil {
		jobTitle = job.Title
	}

	employerID := e.EmployerID
	n := &domain.Notification{
		UserID:  e.JobseekerID,
		ActorID: &employerID,
		Type:    domain.NotificationApplicationUpdate,
		Title:   "Application update",
		Message: applicationUpdateMessage(jobTitle, e.NewStatus),
		Related: domain.ApplicationRef{ApplicationID: e.ApplicationID},
		Metadata: map[string]any{
			"job_id":     e.JobID,
			"job_title":  jobTitle,
			"old_status": e.OldStatus,
			"new_status": e.NewStatus,
		},
	}
	if e.Notes != nil {
		n.Metadata["notes"] = *e.Notes
	}

	if _, err := u.Notify(ctx, n); err != nil {
		u.events.Failure(ctx, eventlog.EventNotificationFailed, "application", formatID(e.ApplicationID), err,
			map[string]any{"notification_type": domain.NotificationApplicationUpdate})
		return err
	}
	return nil
}

func applicationUpdateMessage(jobTitle string, status domain.ApplicationStatus) string {
	switch status {
	case domain.ApplicationStatusShortlisted:
		return fmt.Sprintf("You have been shortlisted for %s", jobTitle)
	case domain.ApplicationStatusAccepted:
		return fmt.Sprintf("Congratulations! Your application for %s was accepted", jobTitle)
	case domain.ApplicationStatusRejected:
		return fmt.Sprintf("Your application for %s was not successful", jobTitle)
	default:
		return fmt.Sprintf("Your application for %s is %s", jobTitle, status)
	}
}

func requireUser(actor domain.Actor) error {
	if actor.ID == "" {
		return apperror.Unauthorized("User not authenticated")
	}
	return nil
}

func (u *notificationUsecase) List(ctx context.Context, actor domain.Actor, includeArchived bool) ([]domain.Notification, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	list, err := u.notifRepo.ListByUser(ctx, actor.ID, includeArchived)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return list, nil
}

func (u *notificationUsecase) UnreadCount(ctx context.Context, actor domain.Actor) (int64, error) {
	if err := requireUser(actor); err != nil {
		return 0, err
	}
	count, err := u.notifRepo.CountUnread(ctx, actor.ID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

func (u *notificationUsecase) MarkRead(ctx context.Context, actor domain.Actor, id int64) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	if err := u.notifRepo.MarkRead(ctx, actor.ID, id, time.Now()); err != nil {
		return notFoundOr(err, apperror.CodeNotificationNotFound, "Notification not found")
	}
	return nil
}

func (u *notificationUsecase) MarkAllRead(ctx context.Context, actor domain.Actor) (int64, error) {
	if err := requireUser(actor); err != nil {
		return 0, err
	}
	n, err := u.notifRepo.MarkAllRead(ctx, actor.ID, time.Now())
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}

func (u *notificationUsecase) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	if err := u.notifRepo.Delete(ctx, actor.ID, id); err != nil {
		return notFoundOr(err, apperror.CodeNotificationNotFound, "Notification not found")
	}
	return nil
}

// ClearAll archives every notification of the caller; rows are kept.
func (u *notificationUsecase) ClearAll(ctx context.Context, actor domain.Actor) (int64, error) {
	if err := requireUser(actor); err != nil {
		return 0, err
	}
	n, err := u.notifRepo.ArchiveAll(ctx, actor.ID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}
