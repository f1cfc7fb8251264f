package usecase

import (
	"context"

	"gradhire-backend/internal/domain"
	"gradhire-backend/internal/metrics"
	"gradhire-backend/pkg/apperror"
	"gradhire-backend/pkg/eventlog"
	"gradhire-backend/pkg/logger"
)

// sideEffects runs the best-effort parts of a write: event emission and
// notification creation. Failures become dependency errors that are logged
// and counted, never returned to the caller of the write.
type sideEffects struct {
	publisher domain.EventPublisher
	events    *eventlog.Logger
}

func newSideEffects(publisher domain.EventPublisher, events *eventlog.Logger) sideEffects {
	if events == nil {
		events = eventlog.Nop()
	}
	return sideEffects{publisher: publisher, events: events}
}

func (s sideEffects) swallow(ctx context.Context, reason string, event eventlog.EventType, subjectType, subjectID string, err error) {
	depErr := apperror.Dependency(reason, err)
	metrics.DependencyFailures.WithLabelValues(reason).Inc()
	logger.Log.ErrorContext(ctx, "best-effort side effect failed",
		"reason", reason,
		"subject_type", subjectType,
		"subject_id", subjectID,
		"error", depErr.Err,
	)
	s.events.Failure(ctx, event, subjectType, subjectID, depErr.Err, nil)
}

func (s sideEffects) jobPublished(ctx context.Context, e domain.JobPublished) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishJobPublished(ctx, e); err != nil {
		s.swallow(ctx, apperror.CodeEventPublishFailed, eventlog.EventEventPublishFailed, "job", formatID(e.JobID), err)
	}
}

func (s sideEffects) applicationStatusChanged(ctx context.Context, e domain.ApplicationStatusChanged) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishApplicationStatusChanged(ctx, e); err != nil {
		s.swallow(ctx, apperror.CodeEventPublishFailed, eventlog.EventEventPublishFailed, "application", formatID(e.ApplicationID), err)
	}
}
