package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

// Insert writes a pending event inside the caller's transaction.
func (r *MySQLRepository) Insert(ctx context.Context, tx *sql.Tx, eventType string, orderID *string, intent Intent) error {
	payload, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("encoding outbox payload: %w", err)
	}

	query := `
		INSERT INTO outbox_events (id, order_id, event_type, payload, status, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
	`
	_, err = tx.ExecContext(ctx, query, uuid.New().String(), orderID, eventType, payload, StatusPending, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("inserting outbox event: %w", err)
	}
	return nil
}

func (r *MySQLRepository) FetchPending(ctx context.Context, limit int) ([]Event, error) {
	query := `
		SELECT id, order_id, event_type, payload, status, attempts, created_at, processed_at
		FROM outbox_events
		WHERE status = ?
		ORDER BY created_at ASC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("querying pending outbox events: %w", err)
	}
	defer rows.Close()

	var evts []Event
	for rows.Next() {
		var evt Event
		if err := rows.Scan(
			&evt.ID, &evt.OrderID, &evt.Type, &evt.Payload,
			&evt.Status, &evt.Attempts, &evt.CreatedAt, &evt.ProcessedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning outbox event: %w", err)
		}
		evts = append(evts, evt)
	}
	return evts, rows.Err()
}

func (r *MySQLRepository) MarkProcessed(ctx context.Context, id string, attempts int) error {
	query := `UPDATE outbox_events SET status = ?, attempts = ?, processed_at = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, StatusProcessed, attempts, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("marking outbox event processed: %w", err)
	}
	return nil
}

func (r *MySQLRepository) MarkFailed(ctx context.Context, id string, attempts int) error {
	query := `UPDATE outbox_events SET status = ?, attempts = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, StatusFailed, attempts, id); err != nil {
		return fmt.Errorf("marking outbox event failed: %w", err)
	}
	return nil
}
