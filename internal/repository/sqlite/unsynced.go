package sqlite

import (
	"context"
	"fmt"
)

// MarkUnsynced records that the row entity/id exists only locally.
func (s *Store) MarkUnsynced(ctx context.Context, entity, id string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO unsynced (entity, id) VALUES (?, ?) ON CONFLICT(entity, id) DO NOTHING",
		entity, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark %s %s unsynced: %w", entity, id, err)
	}
	return nil
}

func (s *Store) MarkSynced(ctx context.Context, entity, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM unsynced WHERE entity = ? AND id = ?", entity, id); err != nil {
		return fmt.Errorf("failed to mark %s %s synced: %w", entity, id, err)
	}
	return nil
}

func (s *Store) IsUnsynced(ctx context.Context, entity, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM unsynced WHERE entity = ? AND id = ?", entity, id,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check %s %s: %w", entity, id, err)
	}
	return n > 0, nil
}

// ListUnsynced returns the ids of entity rows awaiting a remote write, in
// the order they were marked.
func (s *Store) ListUnsynced(ctx context.Context, entity string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM unsynced WHERE entity = ? ORDER BY rowid", entity)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsynced %s: %w", entity, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan unsynced id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
