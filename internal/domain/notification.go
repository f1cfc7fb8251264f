package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// NotificationType values
type NotificationType string

const (
	NotificationJobMatch          NotificationType = "job_match"
	NotificationApplicationUpdate NotificationType = "application_update"
	NotificationNewMessage        NotificationType = "new_message"
	NotificationInterview         NotificationType = "interview"
	NotificationSystem            NotificationType = "system"
)

// RelatedModel names the kind of record a notification points at.
type RelatedModel string

const (
	RelatedJob         RelatedModel = "Job"
	RelatedApplication RelatedModel = "Application"
	RelatedMessage     RelatedModel = "Message"
	RelatedUser        RelatedModel = "User"
)

// RelatedRef is a typed pointer from a notification to the record it is about.
// Implementations: JobRef, ApplicationRef, MessageRef, UserRef.
type RelatedRef interface {
	Model() RelatedModel
	Key() string
	relatedRef()
}

type JobRef struct{ JobID int64 }
type ApplicationRef struct{ ApplicationID int64 }
type MessageRef struct{ MessageID int64 }
type UserRef struct{ UserID string }

func (r JobRef) Model() RelatedModel         { return RelatedJob }
func (r ApplicationRef) Model() RelatedModel { return RelatedApplication }
func (r MessageRef) Model() RelatedModel     { return RelatedMessage }
func (r UserRef) Model() RelatedModel        { return RelatedUser }

func (r JobRef) Key() string         { return strconv.FormatInt(r.JobID, 10) }
func (r ApplicationRef) Key() string { return strconv.FormatInt(r.ApplicationID, 10) }
func (r MessageRef) Key() string     { return strconv.FormatInt(r.MessageID, 10) }
func (r UserRef) Key() string        { return r.UserID }

func (JobRef) relatedRef()         {}
func (ApplicationRef) relatedRef() {}
func (MessageRef) relatedRef()     {}
func (UserRef) relatedRef()        {}

// NewRelatedRef rebuilds a typed reference from its stored (model, key) pair.
func NewRelatedRef(model RelatedModel, key string) (RelatedRef, error) {
	switch model {
	case "":
		return nil, nil
	case RelatedUser:
		return UserRef{UserID: key}, nil
	}

	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("related %s id %q: %w", model, key, err)
	}
	switch model {
	case RelatedJob:
		return JobRef{JobID: id}, nil
	case RelatedApplication:
		return ApplicationRef{ApplicationID: id}, nil
	case RelatedMessage:
		return MessageRef{MessageID: id}, nil
	}
	return nil, fmt.Errorf("unknown related model %q", model)
}

// Notification is one entry of a user's notification log.
type Notification struct {
	ID         int64            `json:"id"`
	UserID     string           `json:"user_id"`
	ActorID    *string          `json:"actor_id,omitempty"` // Sender for new_message
	Type       NotificationType `json:"type"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Related    RelatedRef       `json:"-"`
	Metadata   map[string]any   `json:"metadata,omitempty"`
	IsRead     bool             `json:"is_read"`
	IsArchived bool             `json:"is_archived"`
	ReadAt     *time.Time       `json:"read_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// MarshalJSON flattens Related into related_model/related_id.
func (n Notification) MarshalJSON() ([]byte, error) {
	type alias Notification
	out := struct {
		alias
		RelatedModel RelatedModel `json:"related_model,omitempty"`
		RelatedID    string       `json:"related_id,omitempty"`
	}{alias: alias(n)}
	if n.Related != nil {
		out.RelatedModel = n.Related.Model()
		out.RelatedID = n.Related.Key()
	}
	return json.Marshal(out)
}

// NotifyOutcome tells how a notification request was applied to the store.
type NotifyOutcome string

const (
	NotifyCreated    NotifyOutcome = "created"
	NotifyMerged     NotifyOutcome = "merged"
	NotifySuppressed NotifyOutcome = "suppressed"
)

// FanOutReport summarizes one skill-match fan-out run.
type FanOutReport struct {
	JobID      int64 `json:"job_id"`
	Scanned    int   `json:"scanned"`
	Matched    int   `json:"matched"`
	Notified   int   `json:"notified"`
	Duplicates int   `json:"duplicates"`
	Failed     int   `json:"failed"`
}

// NotificationRepository is the append-only per-user notification log.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	// ExistsSince reports whether a notification of type for (userID, related)
	// was created at or after since.
	ExistsSince(ctx context.Context, userID string, typ NotificationType, related RelatedRef, since time.Time) (bool, error)
	// FindUnreadFromActor returns the newest unread notification of type sent to
	// userID by actorID at or after since, or nil.
	FindUnreadFromActor(ctx context.Context, userID, actorID string, typ NotificationType, since time.Time) (*Notification, error)
	UpdateContent(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID string, includeArchived bool) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID string, id int64, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
	Delete(ctx context.Context, userID string, id int64) error
	ArchiveAll(ctx context.Context, userID string) (int64, error)
}

// Notifier writes one notification through the type-specific dedup policies.
type Notifier interface {
	Notify(ctx context.Context, n *Notification) (NotifyOutcome, error)
}

// NotificationUsecase covers the notification store policies, the two
// notification producers and the user-facing inbox operations.
type NotificationUsecase interface {
	EventHandler
	Notifier

	FanOutJobMatches(ctx context.Context, jobID int64) (*FanOutReport, error)

	List(ctx context.Context, actor Actor, includeArchived bool) ([]Notification, error)
	UnreadCount(ctx context.Context, actor Actor) (int64, error)
	MarkRead(ctx context.Context, actor Actor, id int64) error
	MarkAllRead(ctx context.Context, actor Actor) (int64, error)
	Delete(ctx context.Context, actor Actor, id int64) error
	ClearAll(ctx context.Context, actor Actor) (int64, error)
}
