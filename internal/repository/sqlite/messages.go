package sqlite

import (
	"context"
	"fmt"

	"campusmarket/trading/internal/model"
)

// UpsertMessages stores messages; existing ids are left untouched since
// messages are immutable.
func (s *Store) UpsertMessages(ctx context.Context, msgs []model.ChatMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO chat_messages
			(id, sender_uid, sender_email, receiver_uid, receiver_email, content, timestamp, item_id, item_title)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare message insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range msgs {
		_, err := stmt.ExecContext(ctx,
			m.ID, m.SenderUID, m.SenderEmail, m.ReceiverUID, m.ReceiverEmail,
			m.Content, m.Timestamp, m.ItemID, m.ItemTitle,
		)
		if err != nil {
			return fmt.Errorf("failed to insert message %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListMessagesForUser returns messages sent or received by uid, oldest first.
func (s *Store) ListMessagesForUser(ctx context.Context, uid string) ([]model.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_uid, sender_email, receiver_uid, receiver_email, content, timestamp, item_id, item_title
		FROM chat_messages
		WHERE sender_uid = ? OR receiver_uid = ?
		ORDER BY timestamp ASC, id ASC
	`, uid, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	msgs := []model.ChatMessage{}
	for rows.Next() {
		var m model.ChatMessage
		err := rows.Scan(
			&m.ID, &m.SenderUID, &m.SenderEmail, &m.ReceiverUID, &m.ReceiverEmail,
			&m.Content, &m.Timestamp, &m.ItemID, &m.ItemTitle,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
