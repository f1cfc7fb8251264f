package domain

import (
	"context"
	"time"
)

// EventType names a domain event on the bus.
type EventType string

const (
	EventJobPublished             EventType = "job.published"
	EventApplicationStatusChanged EventType = "application.status_changed"
)

// JobPublished is emitted once per draft→published edge.
type JobPublished struct {
	EventID    string    `json:"event_id"`
	JobID      int64     `json:"job_id"`
	EmployerID string    `json:"employer_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ApplicationStatusChanged is emitted when a review changes the status value.
type ApplicationStatusChanged struct {
	EventID       string            `json:"event_id"`
	ApplicationID int64             `json:"application_id"`
	JobID         int64             `json:"job_id"`
	JobseekerID   string            `json:"jobseeker_id"`
	EmployerID    string            `json:"employer_id"`
	OldStatus     ApplicationStatus `json:"old_status"`
	NewStatus     ApplicationStatus `json:"new_status"`
	Notes         *string           `json:"notes,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

// EventPublisher hands domain events to whatever runs the notification side.
// Publishing is best-effort: callers log failures and carry on.
type EventPublisher interface {
	PublishJobPublished(ctx context.Context, e JobPublished) error
	PublishApplicationStatusChanged(ctx context.Context, e ApplicationStatusChanged) error
}

// EventHandler consumes domain events.
type EventHandler interface {
	HandleJobPublished(ctx context.Context, e JobPublished) error
	HandleApplicationStatusChanged(ctx context.Context, e ApplicationStatusChanged) error
}
