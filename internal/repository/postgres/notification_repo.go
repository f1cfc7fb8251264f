package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gradhire-backend/internal/domain"
	"gradhire-backend/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notificationColumns = `id, user_id, actor_id, type, title, message, related_model, related_id,
	metadata, is_read, is_archived, read_at, created_at, updated_at`

// listLimit caps a single inbox read.
const listLimit = 100

type notificationRepo struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) domain.NotificationRepository {
	return &notificationRepo{db: db}
}

func relatedColumns(ref domain.RelatedRef) (*string, *string) {
	if ref == nil {
		return nil, nil
	}
	model := string(ref.Model())
	key := ref.Key()
	return &model, &key
}

// encodeMetadata returns the JSON as a string; pgx's jsonb codec takes a
// string as the encoded document.
func encodeMetadata(meta map[string]any) (string, error) {
	if meta == nil {
		return "{}", nil
	}
	b, err := json.Marshal(meta)
	return string(b), err
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var (
		n            domain.Notification
		relatedModel *string
		relatedID    *string
		metadata     []byte
	)
	err := row.Scan(
		&n.ID, &n.UserID, &n.ActorID, &n.Type, &n.Title, &n.Message, &relatedModel, &relatedID,
		&metadata, &n.IsRead, &n.IsArchived, &n.ReadAt, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if relatedModel != nil && relatedID != nil {
		ref, err := domain.NewRelatedRef(domain.RelatedModel(*relatedModel), *relatedID)
		if err != nil {
			return nil, err
		}
		n.Related = ref
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &n.Metadata); err != nil {
			return nil, fmt.Errorf("notification %d metadata: %w", n.ID, err)
		}
	}
	return &n, nil
}

func (r *notificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	meta, err := encodeMetadata(n.Metadata)
	if err != nil {
		return err
	}
	relatedModel, relatedID := relatedColumns(n.Related)

	query := `INSERT INTO notifications (user_id, actor_id, type, title, message, related_model, related_id, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	return r.db.QueryRow(ctx, query,
		n.UserID, n.ActorID, n.Type, n.Title, n.Message, relatedModel, relatedID, meta, n.CreatedAt, n.UpdatedAt,
	).Scan(&n.ID)
}

func (r *notificationRepo) ExistsSince(ctx context.Context, userID string, typ domain.NotificationType, related domain.RelatedRef, since time.Time) (bool, error) {
	relatedModel, relatedID := relatedColumns(related)

	query := `SELECT EXISTS (
		SELECT 1 FROM notifications
		WHERE user_id = $1 AND type = $2
			AND related_model IS NOT DISTINCT FROM $3
			AND related_id IS NOT DISTINCT FROM $4
			AND created_at >= $5
	)`
	var exists bool
	err := r.db.QueryRow(ctx, query, userID, typ, relatedModel, relatedID, since).Scan(&exists)
	return exists, err
}

func (r *notificationRepo) FindUnreadFromActor(ctx context.Context, userID, actorID string, typ domain.NotificationType, since time.Time) (*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1 AND actor_id = $2 AND type = $3
			AND NOT is_read AND NOT is_archived
			AND created_at >= $4
		ORDER BY created_at DESC
		LIMIT 1`

	n, err := scanNotification(r.db.QueryRow(ctx, query, userID, actorID, typ, since))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return n, nil
}

// UpdateContent rewrites title, message and metadata of a merged notification.
func (r *notificationRepo) UpdateContent(ctx context.Context, n *domain.Notification) error {
	meta, err := encodeMetadata(n.Metadata)
	if err != nil {
		return err
	}
	relatedModel, relatedID := relatedColumns(n.Related)

	query := `UPDATE notifications
		SET title = $2, message = $3, metadata = $4, related_model = $5, related_id = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, n.ID, n.Title, n.Message, meta, relatedModel, relatedID, n.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID string, includeArchived bool) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1 AND ($2 OR NOT is_archived)
		ORDER BY created_at DESC
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, userID, includeArchived, listLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read AND NOT is_archived`,
		userID,
	).Scan(&count)
	return count, err
}

// MarkRead is idempotent; a read notification keeps its first read_at.
func (r *notificationRepo) MarkRead(ctx context.Context, userID string, id int64, at time.Time) error {
	query := `UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, $3), updated_at = $3
		WHERE id = $2 AND user_id = $1`
	tag, err := r.db.Exec(ctx, query, userID, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	query := `UPDATE notifications
		SET is_read = TRUE, read_at = $2, updated_at = $2
		WHERE user_id = $1 AND NOT is_read`
	tag, err := r.db.Exec(ctx, query, userID, at)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepo) Delete(ctx context.Context, userID string, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $2 AND user_id = $1`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *notificationRepo) ArchiveAll(ctx context.Context, userID string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_archived = TRUE, updated_at = NOW() WHERE user_id = $1 AND NOT is_archived`,
		userID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
