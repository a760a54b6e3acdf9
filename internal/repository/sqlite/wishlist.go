package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campusmarket/trading/internal/model"
)

const wishlistColumns = `id, user_id, user_email, title, category, min_price, max_price,
	target_price, item_id, enable_price_alert, description, created_at, updated_at`

func (s *Store) UpsertWishlist(ctx context.Context, wishes []model.WishlistItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO wishlist (`+wishlistColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			user_email = excluded.user_email,
			title = excluded.title,
			category = excluded.category,
			min_price = excluded.min_price,
			max_price = excluded.max_price,
			target_price = excluded.target_price,
			item_id = excluded.item_id,
			enable_price_alert = excluded.enable_price_alert,
			description = excluded.description,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare wishlist upsert: %w", err)
	}
	defer stmt.Close()

	for _, w := range wishes {
		_, err := stmt.ExecContext(ctx,
			w.ID, w.UserID, w.UserEmail, w.Title, w.Category, w.MinPrice, w.MaxPrice,
			w.TargetPrice, w.ItemID, boolToInt(w.EnablePriceAlert), w.Description,
			toMillis(w.CreatedAt), toMillis(w.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert wishlist item %s: %w", w.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) ListWishlist(ctx context.Context, limit int) ([]model.WishlistItem, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+wishlistColumns+" FROM wishlist ORDER BY created_at DESC LIMIT ?",
		limitClause(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	return scanWishlist(rows)
}

func (s *Store) ListWishlistByUser(ctx context.Context, userID string) ([]model.WishlistItem, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+wishlistColumns+" FROM wishlist WHERE user_id = ? ORDER BY created_at DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist for user: %w", err)
	}
	return scanWishlist(rows)
}

func (s *Store) GetWishlistItem(ctx context.Context, id string) (*model.WishlistItem, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+wishlistColumns+" FROM wishlist WHERE id = ?", id)
	w, err := scanWish(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrWishNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist item: %w", err)
	}
	return w, nil
}

// FindWishlistByItem returns the user's entry linked to itemID, or
// model.ErrWishNotFound.
func (s *Store) FindWishlistByItem(ctx context.Context, userID, itemID string) (*model.WishlistItem, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+wishlistColumns+" FROM wishlist WHERE user_id = ? AND item_id = ? ORDER BY created_at LIMIT 1",
		userID, itemID,
	)
	w, err := scanWish(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrWishNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find wishlist item: %w", err)
	}
	return w, nil
}

func (s *Store) DeleteWishlistItem(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM wishlist WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete wishlist item: %w", err)
	}
	return nil
}

func scanWish(sc scanner) (*model.WishlistItem, error) {
	var (
		w                    model.WishlistItem
		alert                int
		createdAt, updatedAt int64
	)
	err := sc.Scan(
		&w.ID, &w.UserID, &w.UserEmail, &w.Title, &w.Category, &w.MinPrice, &w.MaxPrice,
		&w.TargetPrice, &w.ItemID, &alert, &w.Description, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	w.EnablePriceAlert = alert != 0
	w.CreatedAt = fromMillis(createdAt)
	w.UpdatedAt = fromMillis(updatedAt)
	return &w, nil
}

func scanWishlist(rows *sql.Rows) ([]model.WishlistItem, error) {
	defer rows.Close()

	out := []model.WishlistItem{}
	for rows.Next() {
		w, err := scanWish(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}
