package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"campusmarket/trading/internal/model"
)

const wishlistColumns = `id, user_id, user_email, title, COALESCE(category, ''), min_price, max_price,
	target_price, COALESCE(item_id, ''), enable_price_alert, COALESCE(description, ''),
	created_at, updated_at`

func (s *Store) ListWishlist(ctx context.Context, limit int) ([]model.WishlistItem, error) {
	query := "SELECT " + wishlistColumns + " FROM wishlist ORDER BY created_at DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}
	return s.queryWishlist(ctx, query, args...)
}

func (s *Store) ListWishlistByUser(ctx context.Context, userID string) ([]model.WishlistItem, error) {
	return s.queryWishlist(ctx,
		"SELECT "+wishlistColumns+" FROM wishlist WHERE user_id = $1 ORDER BY created_at DESC", userID)
}

func (s *Store) GetWishlistItem(ctx context.Context, id string) (*model.WishlistItem, error) {
	w, err := scanWish(s.getExecutor(ctx).QueryRow(ctx, "SELECT "+wishlistColumns+" FROM wishlist WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrWishNotFound
		}
		return nil, fmt.Errorf("failed to get wishlist item: %w", err)
	}
	return w, nil
}

func (s *Store) CreateWishlistItem(ctx context.Context, w model.WishlistItem) (*model.WishlistItem, error) {
	row := s.getExecutor(ctx).QueryRow(ctx, `
		INSERT INTO wishlist (id, user_id, user_email, title, category, min_price, max_price,
			target_price, item_id, enable_price_alert, description)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, NULLIF($9, ''), $10, NULLIF($11, ''))
		RETURNING `+wishlistColumns,
		w.ID, w.UserID, w.UserEmail, w.Title, w.Category, w.MinPrice, w.MaxPrice,
		w.TargetPrice, w.ItemID, w.EnablePriceAlert, w.Description,
	)
	created, err := scanWish(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create wishlist item: %w", err)
	}
	return created, nil
}

func (s *Store) UpdateWishlistItem(ctx context.Context, id string, patch model.WishlistPatch) (*model.WishlistItem, error) {
	var b updateBuilder
	if patch.Title != nil {
		b.set("title", *patch.Title)
	}
	if patch.Category != nil {
		b.set("category", *patch.Category)
	}
	if patch.MinPrice != nil {
		b.set("min_price", *patch.MinPrice)
	}
	if patch.MaxPrice != nil {
		b.set("max_price", *patch.MaxPrice)
	}
	if patch.TargetPrice != nil {
		b.set("target_price", *patch.TargetPrice)
	}
	if patch.ItemID != nil {
		b.set("item_id", *patch.ItemID)
	}
	if patch.EnablePriceAlert != nil {
		b.set("enable_price_alert", *patch.EnablePriceAlert)
	}
	if patch.Description != nil {
		b.set("description", *patch.Description)
	}

	query, args := b.build("wishlist", "id", id, wishlistColumns)
	updated, err := scanWish(s.getExecutor(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrWishNotFound
		}
		return nil, fmt.Errorf("failed to update wishlist item: %w", err)
	}
	return updated, nil
}

func (s *Store) DeleteWishlistItem(ctx context.Context, id string) error {
	if _, err := s.getExecutor(ctx).Exec(ctx, "DELETE FROM wishlist WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete wishlist item: %w", err)
	}
	return nil
}

// UpsertWishlistByItem inserts w, or overwrites the user's entry for
// w.ItemID when one exists, keeping its id and creation time. The partial
// unique index on (user_id, item_id) makes concurrent adds coalesce too.
func (s *Store) UpsertWishlistByItem(ctx context.Context, w model.WishlistItem) (*model.WishlistItem, error) {
	row := s.getExecutor(ctx).QueryRow(ctx, `
		INSERT INTO wishlist (id, user_id, user_email, title, category, min_price, max_price,
			target_price, item_id, enable_price_alert, description)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, NULLIF($9, ''), $10, NULLIF($11, ''))
		ON CONFLICT (user_id, item_id) WHERE `+linkedItemPredicate+` DO UPDATE SET
			user_email = EXCLUDED.user_email,
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			min_price = EXCLUDED.min_price,
			max_price = EXCLUDED.max_price,
			target_price = EXCLUDED.target_price,
			enable_price_alert = EXCLUDED.enable_price_alert,
			description = EXCLUDED.description,
			updated_at = now()
		RETURNING `+wishlistColumns,
		w.ID, w.UserID, w.UserEmail, w.Title, w.Category, w.MinPrice, w.MaxPrice,
		w.TargetPrice, w.ItemID, w.EnablePriceAlert, w.Description,
	)
	saved, err := scanWish(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert wishlist item: %w", err)
	}
	return saved, nil
}

func (s *Store) queryWishlist(ctx context.Context, query string, args ...any) ([]model.WishlistItem, error) {
	rows, err := s.getExecutor(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
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

func scanWish(row pgx.Row) (*model.WishlistItem, error) {
	var w model.WishlistItem
	err := row.Scan(
		&w.ID, &w.UserID, &w.UserEmail, &w.Title, &w.Category, &w.MinPrice, &w.MaxPrice,
		&w.TargetPrice, &w.ItemID, &w.EnablePriceAlert, &w.Description, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
