package postgres

import (
	"context"
	"fmt"

	"campusmarket/trading/internal/model"
)

func (s *Store) CreateMessage(ctx context.Context, msg model.ChatMessage) error {
	_, err := s.getExecutor(ctx).Exec(ctx, `
		INSERT INTO chat_messages (id, sender_uid, sender_email, receiver_uid, receiver_email, content, timestamp, item_id, item_title)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`,
		msg.ID, msg.SenderUID, msg.SenderEmail, msg.ReceiverUID, msg.ReceiverEmail,
		msg.Content, msg.Timestamp, msg.ItemID, msg.ItemTitle,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (s *Store) ListMessagesForUser(ctx context.Context, uid string) ([]model.ChatMessage, error) {
	rows, err := s.getExecutor(ctx).Query(ctx, `
		SELECT id, sender_uid, sender_email, receiver_uid, receiver_email, content, timestamp, item_id, item_title
		FROM chat_messages
		WHERE sender_uid = $1 OR receiver_uid = $1
		ORDER BY timestamp ASC`, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	out := []model.ChatMessage{}
	for rows.Next() {
		var m model.ChatMessage
		err := rows.Scan(&m.ID, &m.SenderUID, &m.SenderEmail, &m.ReceiverUID, &m.ReceiverEmail,
			&m.Content, &m.Timestamp, &m.ItemID, &m.ItemTitle)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
