package postgres

import (
	"context"
	"fmt"

	"gradhire-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type messageRepo struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) domain.MessageRepository {
	return &messageRepo{db: db}
}

const insertMessageQuery = `INSERT INTO messages (conversation_id, sender_id, recipient_id, application_id, job_id, type, body, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id`

func messageArgs(msg *domain.Message) []any {
	return []any{msg.ConversationID, msg.SenderID, msg.RecipientID, msg.ApplicationID, msg.JobID, msg.Type, msg.Body, msg.CreatedAt}
}

func (r *messageRepo) Create(ctx context.Context, msg *domain.Message) error {
	return r.db.QueryRow(ctx, insertMessageQuery, messageArgs(msg)...).Scan(&msg.ID)
}

func (r *messageRepo) CreateInterview(ctx context.Context, msg *domain.Message, interview *domain.Interview) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, insertMessageQuery, messageArgs(msg)...).Scan(&msg.ID); err != nil {
		return fmt.Errorf("failed to insert interview message: %w", err)
	}

	interview.MessageID = msg.ID
	query := `INSERT INTO interviews (message_id, application_id, scheduled_at, duration_minutes, location, meeting_url, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err = tx.QueryRow(ctx, query,
		interview.MessageID, interview.ApplicationID, interview.ScheduledAt, interview.DurationMinutes,
		interview.Location, interview.MeetingURL, interview.Notes, interview.CreatedAt,
	).Scan(&interview.ID)
	if err != nil {
		return fmt.Errorf("failed to insert interview: %w", err)
	}

	return tx.Commit(ctx)
}

// ListByConversation narrows the conversation id match to the exact pair.
// Two different pairs can share a conversation id when a user id contains
// the separator.
func (r *messageRepo) ListByConversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	query := `SELECT id, conversation_id, sender_id, recipient_id, application_id, job_id, type, body, created_at
		FROM messages
		WHERE conversation_id = $1
			AND ((sender_id = $2 AND recipient_id = $3) OR (sender_id = $3 AND recipient_id = $2))
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Query(ctx, query, domain.ConversationID(userA, userB), userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.RecipientID, &m.ApplicationID, &m.JobID, &m.Type, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
