package usecase

import (
	"context"
	"strings"
	"time"

	"gradhire-backend/internal/domain"
	"gradhire-backend/pkg/apperror"
	"gradhire-backend/pkg/eventlog"
)

const (
	previewLength          = 120
	defaultInterviewLength = 30
	maxInterviewLength     = 480
)

type messagingUsecase struct {
	applicationRepo domain.ApplicationRepository
	messageRepo     domain.MessageRepository
	notifier        domain.Notifier
	effects         sideEffects
}

func NewMessagingUsecase(
	appRepo domain.ApplicationRepository,
	messageRepo domain.MessageRepository,
	notifier domain.Notifier,
	events *eventlog.Logger,
) domain.MessagingUsecase {
	return &messagingUsecase{
		applicationRepo: appRepo,
		messageRepo:     messageRepo,
		notifier:        notifier,
		effects:         newSideEffects(nil, events),
	}
}

// CheckEligibility reads the current application state on every call. The
// answer is never cached because a review can change it between messages.
func (uc *messagingUsecase) CheckEligibility(ctx context.Context, actorID, counterpartID string, jobID *int64) (*domain.Eligibility, error) {
	result := &domain.Eligibility{ConversationID: domain.ConversationID(actorID, counterpartID)}
	if actorID == counterpartID {
		result.Reason = domain.ReasonNoApplication
		return result, nil
	}

	apps, err := uc.applicationRepo.ListBetween(ctx, actorID, counterpartID, jobID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	app := domain.SelectForMessaging(apps)
	if app == nil {
		result.Reason = domain.ReasonNoApplication
		return result, nil
	}
	if !app.Status.AllowsMessaging() {
		result.Reason = domain.IneligibleStatusReason(app.Status)
		return result, nil
	}

	result.Eligible = true
	result.Application = app
	return result, nil
}

func (uc *messagingUsecase) gate(ctx context.Context, actor domain.Actor, counterpartID string, jobID *int64) (*domain.Eligibility, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(counterpartID) == "" {
		return nil, apperror.Validation(apperror.CodeInvalidInput, "Recipient is required")
	}

	elig, err := uc.CheckEligibility(ctx, actor.ID, counterpartID, jobID)
	if err != nil {
		return nil, err
	}
	if !elig.Eligible {
		uc.effects.events.Log(ctx, eventlog.Record{
			Event:       eventlog.EventMessagingDenied,
			SubjectType: "conversation",
			SubjectID:   elig.ConversationID,
			ActorID:     actor.ID,
			Details:     map[string]any{"reason": elig.Reason},
		})
		return nil, apperror.Authorization(apperror.CodeMessagingNotAllowed, elig.Reason)
	}
	return elig, nil
}

func (uc *messagingUsecase) SendMessage(ctx context.Context, actor domain.Actor, input domain.SendMessageInput) (*domain.Message, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, apperror.Validation(apperror.CodeInvalidInput, "Message body is required")
	}

	elig, err := uc.gate(ctx, actor, input.RecipientID, input.JobID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ConversationID: elig.ConversationID,
		SenderID:       actor.ID,
		RecipientID:    input.RecipientID,
		ApplicationID:  elig.Application.ID,
		JobID:          elig.Application.JobID,
		Type:           domain.MessageTypeText,
		Body:           body,
		CreatedAt:      time.Now(),
	}
	if err := uc.messageRepo.Create(ctx, msg); err != nil {
		return nil, apperror.Internal(err)
	}

	senderID := actor.ID
	uc.notify(ctx, &domain.Notification{
		UserID:  msg.RecipientID,
		ActorID: &senderID,
		Type:    domain.NotificationNewMessage,
		Title:   "New message",
		Message: preview(body),
		Related: domain.MessageRef{MessageID: msg.ID},
		Metadata: map[string]any{
			"conversation_id": msg.ConversationID,
			"application_id":  msg.ApplicationID,
			"job_id":          msg.JobID,
		},
	}, "message", msg.ID)

	return msg, nil
}

// ScheduleInterview writes an interview-typed message plus its interview
// record, only after the same eligibility gate as a text message.
func (uc *messagingUsecase) ScheduleInterview(ctx context.Context, actor domain.Actor, input domain.ScheduleInterviewInput) (*domain.Message, *domain.Interview, error) {
	if !actor.IsEmployer() {
		return nil, nil, apperror.Authorization(apperror.CodeRoleNotAllowed, "Only employers can schedule interviews")
	}
	now := time.Now()
	if input.ScheduledAt.IsZero() || !input.ScheduledAt.After(now) {
		return nil, nil, apperror.Validation(apperror.CodeInvalidInput, "Interview time must be in the future")
	}
	duration := input.DurationMinutes
	if duration == 0 {
		duration = defaultInterviewLength
	}
	if duration < 0 || duration > maxInterviewLength {
		return nil, nil, apperror.Validation(apperror.CodeInvalidInput, "Interview duration must be between 1 and 480 minutes")
	}

	elig, err := uc.gate(ctx, actor, input.RecipientID, input.JobID)
	if err != nil {
		return nil, nil, err
	}

	msg := &domain.Message{
		ConversationID: elig.ConversationID,
		SenderID:       actor.ID,
		RecipientID:    input.RecipientID,
		ApplicationID:  elig.Application.ID,
		JobID:          elig.Application.JobID,
		Type:           domain.MessageTypeInterview,
		Body:           "Interview scheduled for " + input.ScheduledAt.UTC().Format(time.RFC1123),
		CreatedAt:      now,
	}
	interview := &domain.Interview{
		ApplicationID:   elig.Application.ID,
		ScheduledAt:     input.ScheduledAt,
		DurationMinutes: duration,
		Location:        input.Location,
		MeetingURL:      input.MeetingURL,
		Notes:           input.Notes,
		CreatedAt:       now,
	}
	if err := uc.messageRepo.CreateInterview(ctx, msg, interview); err != nil {
		return nil, nil, apperror.Internal(err)
	}

	senderID := actor.ID
	meta := map[string]any{
		"conversation_id":  msg.ConversationID,
		"application_id":   msg.ApplicationID,
		"interview_id":     interview.ID,
		"scheduled_at":     interview.ScheduledAt,
		"duration_minutes": interview.DurationMinutes,
	}
	if elig.Application.JobTitle != nil {
		meta["job_title"] = *elig.Application.JobTitle
	}
	uc.notify(ctx, &domain.Notification{
		UserID:   msg.RecipientID,
		ActorID:  &senderID,
		Type:     domain.NotificationInterview,
		Title:    "Interview invitation",
		Message:  msg.Body,
		Related:  domain.MessageRef{MessageID: msg.ID},
		Metadata: meta,
	}, "message", msg.ID)

	return msg, interview, nil
}

func (uc *messagingUsecase) ListConversation(ctx context.Context, actor domain.Actor, counterpartID string) ([]domain.Message, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(counterpartID) == "" {
		return nil, apperror.Validation(apperror.CodeInvalidInput, "Counterpart is required")
	}
	messages, err := uc.messageRepo.ListByConversation(ctx, actor.ID, counterpartID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	// Rows from another pair that shares the conversation id never leave here.
	out := make([]domain.Message, 0, len(messages))
	for _, m := range messages {
		if m.Between(actor.ID, counterpartID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (uc *messagingUsecase) notify(ctx context.Context, n *domain.Notification, subjectType string, subjectID int64) {
	if uc.notifier == nil {
		return
	}
	if _, err := uc.notifier.Notify(ctx, n); err != nil {
		uc.effects.swallow(ctx, apperror.CodeNotificationWriteFailed, eventlog.EventNotificationFailed, subjectType, formatID(subjectID), err)
	}
}

func preview(body string) string {
	runes := []rune(body)
	if len(runes) <= previewLength {
		return body
	}
	return string(runes[:previewLength]) + "..."
}
