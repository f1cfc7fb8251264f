package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gradhire-backend/internal/domain"

	"github.com/hibiken/asynq"
)

// Task types shared by the API (producer) and the worker (consumer).
const (
	TypeJobPublished             = "job:published"
	TypeApplicationStatusChanged = "application:status_changed"
)

var jsonMarshal = json.Marshal

// NewJobPublishedTask wraps a publication event as a queue task.
func NewJobPublishedTask(e domain.JobPublished) (*asynq.Task, error) {
	payload, err := jsonMarshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal job published: %w", err)
	}
	return asynq.NewTask(TypeJobPublished, payload), nil
}

// NewApplicationStatusChangedTask wraps a review event as a queue task.
func NewApplicationStatusChangedTask(e domain.ApplicationStatusChanged) (*asynq.Task, error) {
	payload, err := jsonMarshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal application status changed: %w", err)
	}
	return asynq.NewTask(TypeApplicationStatusChanged, payload), nil
}

var (
	// ErrUnknownEvent is returned by Dispatch for a type it does not route.
	ErrUnknownEvent = errors.New("unknown event type")
	// ErrMalformedPayload marks a payload that cannot be decoded.
	ErrMalformedPayload = errors.New("malformed event payload")
)

// Dispatch decodes payload by its task type and hands it to h. The asynq
// worker and the kafka consumer both route through here.
func Dispatch(ctx context.Context, h domain.EventHandler, eventType string, payload []byte) error {
	switch eventType {
	case TypeJobPublished:
		var e domain.JobPublished
		if err := json.Unmarshal(payload, &e); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		return h.HandleJobPublished(ctx, e)
	case TypeApplicationStatusChanged:
		var e domain.ApplicationStatusChanged
		if err := json.Unmarshal(payload, &e); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		return h.HandleApplicationStatusChanged(ctx, e)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, eventType)
	}
}
