package repository

import (
	"context"
	"database/sql"
	"fmt"

	"vendly/internal/domain"
	"vendly/internal/errors"
)

const notificationColumns = `
	id, user_id, type, title, message, link,
	order_id, conversation_id, proposal_id, message_id,
	is_read, created_at
`

type MySQLNotificationRepository struct {
	db *sql.DB
}

func NewMySQLNotificationRepository(db *sql.DB) *MySQLNotificationRepository {
	return &MySQLNotificationRepository{db: db}
}

// Insert is replay-safe: the dispatcher derives ids from the triggering
// event, so a replayed insert hits the primary key and is ignored.
func (r *MySQLNotificationRepository) Insert(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT IGNORE INTO notifications (
			id, user_id, type, title, message, link,
			order_id, conversation_id, proposal_id, message_id,
			is_read, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.Link,
		n.OrderID, n.ConversationID, n.ProposalID, n.MessageID,
		n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

func (r *MySQLNotificationRepository) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	query := `SELECT` + notificationColumns + `FROM notifications WHERE id = ?`

	var n domain.Notification
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Link,
		&n.OrderID, &n.ConversationID, &n.ProposalID, &n.MessageID,
		&n.Read, &n.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("notification with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying notification by id: %w", err)
	}
	return &n, nil
}

func (r *MySQLNotificationRepository) ListForUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	query := `SELECT` + notificationColumns + `FROM notifications WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying notifications for user: %w", err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Link,
			&n.OrderID, &n.ConversationID, &n.ProposalID, &n.MessageID,
			&n.Read, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *MySQLNotificationRepository) ListUnreadIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT id FROM notifications WHERE user_id = ? AND is_read = FALSE`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying unread notifications: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning notification id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *MySQLNotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = FALSE`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead is an idempotent per-row flip scoped to the recipient.
func (r *MySQLNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Either absent, someone else's, or already read; recheck so the
		// already-read case stays idempotent.
		n, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if n.UserID != userID {
			return errors.NewNotFoundError(fmt.Sprintf("notification with id %s not found", id))
		}
	}
	return nil
}
