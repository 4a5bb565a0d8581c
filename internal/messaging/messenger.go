// Package messaging is the chat collaborator boundary: the core emits
// conversation messages (proposal references, delivery notes) and never
// reads them back. Transport to connected clients is external.
package messaging

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

type Messenger struct {
	db *sql.DB
}

func NewMessenger(db *sql.DB) *Messenger {
	return &Messenger{db: db}
}

// Send inserts a message into the conversation, creating the conversation
// row when missing, and returns the conversation id. Callers replaying a
// delivery pass a deterministic messageID so the duplicate insert hits
// the primary key and is ignored; an empty messageID gets a fresh id.
func (m *Messenger) Send(ctx context.Context, messageID, conversationID, senderID, content string, metadata map[string]string) (string, error) {
	if messageID == "" {
		messageID = uuid.New().String()
	}
	if conversationID == "" {
		conversationID = uuid.New().String()
	}

	now := time.Now().UTC()

	ensure := `INSERT IGNORE INTO conversations (id, created_at) VALUES (?, ?)`
	if _, err := m.db.ExecContext(ctx, ensure, conversationID, now); err != nil {
		return "", fmt.Errorf("ensuring conversation: %w", err)
	}

	var meta []byte
	if len(metadata) > 0 {
		encoded, err := json.Marshal(metadata)
		if err != nil {
			return "", fmt.Errorf("encoding message metadata: %w", err)
		}
		meta = encoded
	}

	insert := `
		INSERT IGNORE INTO conversation_messages (id, conversation_id, sender_id, content, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := m.db.ExecContext(ctx, insert, messageID, conversationID, senderID, content, meta, now); err != nil {
		return "", fmt.Errorf("inserting conversation message: %w", err)
	}
	return conversationID, nil
}
