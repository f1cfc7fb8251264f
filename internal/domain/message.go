package domain

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ConversationSeparator joins the two participant ids of a conversation.
const ConversationSeparator = "_"

// ReasonNoApplication is returned when two users share no application.
const ReasonNoApplication = "no application between these users"

// ConversationID derives the order-independent key grouping messages between a and b.
func ConversationID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, ConversationSeparator)
}

// IneligibleStatusReason builds the denial reason for an application whose
// status does not allow messaging yet.
func IneligibleStatusReason(status ApplicationStatus) string {
	return fmt.Sprintf("messaging available only after shortlist or acceptance; current status: %s", status)
}

// MessageType values
type MessageType string

const (
	MessageTypeText      MessageType = "text"
	MessageTypeInterview MessageType = "interview"
)

type Message struct {
	ID             int64       `json:"id"`
	ConversationID string      `json:"conversation_id"`
	SenderID       string      `json:"sender_id"`
	RecipientID    string      `json:"recipient_id"`
	ApplicationID  int64       `json:"application_id"`
	JobID          int64       `json:"job_id"`
	Type           MessageType `json:"type"`
	Body           string      `json:"body"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Between reports whether m was exchanged between a and b, in either direction.
// Conversation ids alone are not unique when user ids contain the separator.
func (m *Message) Between(a, b string) bool {
	return (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a)
}

type Interview struct {
	ID              int64     `json:"id"`
	MessageID       int64     `json:"message_id"`
	ApplicationID   int64     `json:"application_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Location        *string   `json:"location,omitempty"`
	MeetingURL      *string   `json:"meeting_url,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Eligibility is the outcome of the messaging gate.
type Eligibility struct {
	Eligible       bool         `json:"eligible"`
	Reason         string       `json:"reason,omitempty"`
	ConversationID string       `json:"conversation_id"`
	Application    *Application `json:"application,omitempty"`
}

// SendMessageInput carries a text message from the HTTP boundary.
type SendMessageInput struct {
	RecipientID string
	JobID       *int64
	Body        string
}

// ScheduleInterviewInput carries an interview invitation.
type ScheduleInterviewInput struct {
	RecipientID     string
	JobID           *int64
	ScheduledAt     time.Time
	DurationMinutes int
	Location        *string
	MeetingURL      *string
	Notes           *string
}

type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error
	// CreateInterview writes the interview message and its interview record together.
	CreateInterview(ctx context.Context, msg *Message, interview *Interview) error
	// ListByConversation returns the messages exchanged between userA and userB,
	// oldest first.
	ListByConversation(ctx context.Context, userA, userB string) ([]Message, error)
}

type MessagingUsecase interface {
	CheckEligibility(ctx context.Context, actorID, counterpartID string, jobID *int64) (*Eligibility, error)
	SendMessage(ctx context.Context, actor Actor, input SendMessageInput) (*Message, error)
	ScheduleInterview(ctx context.Context, actor Actor, input ScheduleInterviewInput) (*Message, *Interview, error)
	ListConversation(ctx context.Context, actor Actor, counterpartID string) ([]Message, error)
}
