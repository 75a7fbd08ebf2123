package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/password-analyzer/internal/model"
	"github.com/sakif/password-analyzer/internal/repository"
)

var _ repository.MessageRepository = (*MessageDB)(nil)

// MessageDB is the chat history table.
type MessageDB struct {
	conn *sql.DB
}

// Create stores msg, filling in ID and, when zero, CreatedAt.
func (m *MessageDB) Create(ctx context.Context, msg *model.Message) error {
	msg.ID = xid.New().String()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	var senderID sql.NullString
	if msg.SenderID != "" {
		senderID = sql.NullString{String: msg.SenderID, Valid: true}
	}

	_, err := m.conn.ExecContext(ctx,
		`INSERT INTO messages (id, channel, sender_id, sender_name, sender_avatar, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID,
		string(msg.Channel),
		senderID,
		msg.SenderName,
		msg.SenderAvatar,
		msg.Content,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating message in %s: %w", msg.Channel, err)
	}
	return nil
}

// ListByChannel selects the newest rows and reverses them so the caller
// reads top to bottom. Ties on created_at fall back to the xid, which is
// time ordered.
func (m *MessageDB) ListByChannel(ctx context.Context, channel model.Channel, opts repository.ListOptions) ([]model.Message, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}

	rows, err := m.conn.QueryContext(ctx,
		`SELECT id, channel, sender_id, sender_name, sender_avatar, content, created_at
		 FROM messages
		 WHERE channel = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		string(channel), limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing %s messages: %w", channel, err)
	}
	defer rows.Close()

	msgs := []model.Message{}
	for rows.Next() {
		var (
			msg      model.Message
			ch       string
			senderID sql.NullString
		)
		if err := rows.Scan(&msg.ID, &ch, &senderID, &msg.SenderName, &msg.SenderAvatar, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning message row: %w", err)
		}
		msg.Channel = model.Channel(ch)
		msg.SenderID = senderID.String
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating message rows: %w", err)
	}

	slices.Reverse(msgs)
	return msgs, nil
}
