package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"campusmarket/trading/internal/model"
)

func (s *Store) ListAchievements(ctx context.Context, userID string) ([]model.UserAchievement, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, type, progress, target, unlocked_at FROM achievements WHERE user_id = ? ORDER BY type",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	out := []model.UserAchievement{}
	for rows.Next() {
		var (
			a          model.UserAchievement
			unlockedAt sql.NullInt64
		)
		if err := rows.Scan(&a.UserID, &a.Type, &a.Progress, &a.Target, &unlockedAt); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		if unlockedAt.Valid {
			t := fromMillis(unlockedAt.Int64)
			a.UnlockedAt = &t
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SaveAchievement records progress. Once set, unlocked_at is never cleared or
// moved.
func (s *Store) SaveAchievement(ctx context.Context, a model.UserAchievement) error {
	var unlockedAt sql.NullInt64
	if a.UnlockedAt != nil {
		unlockedAt = sql.NullInt64{Int64: a.UnlockedAt.UnixMilli(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO achievements (user_id, type, progress, target, unlocked_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, type) DO UPDATE SET
			progress = excluded.progress,
			target = excluded.target,
			unlocked_at = COALESCE(achievements.unlocked_at, excluded.unlocked_at)
	`, a.UserID, string(a.Type), a.Progress, a.Target, unlockedAt)
	if err != nil {
		return fmt.Errorf("failed to save achievement: %w", err)
	}
	return nil
}
