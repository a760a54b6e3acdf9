package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"campusmarket/trading/internal/model"
)

func (c *Client) ListWishlist(ctx context.Context, limit int) ([]model.WishlistItem, error) {
	var rows []wishlistRow
	q := limitQuery(selectQuery(nil), limit)
	if err := c.do(ctx, http.MethodGet, c.restURL(tableWishlist, q), nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	return toWishlist(rows), nil
}

func (c *Client) ListWishlistByUser(ctx context.Context, userID string) ([]model.WishlistItem, error) {
	var rows []wishlistRow
	q := limitQuery(selectQuery(map[string]string{"user_id": userID}), 0)
	if err := c.do(ctx, http.MethodGet, c.restURL(tableWishlist, q), nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to list wishlist for user: %w", err)
	}
	return toWishlist(rows), nil
}

func (c *Client) GetWishlistItem(ctx context.Context, id string) (*model.WishlistItem, error) {
	var rows []wishlistRow
	q := selectQuery(map[string]string{"id": id})
	if err := c.do(ctx, http.MethodGet, c.restURL(tableWishlist, q), nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to get wishlist item: %w", err)
	}
	if len(rows) == 0 {
		return nil, model.ErrWishNotFound
	}
	w := rows[0].toWishlistItem()
	return &w, nil
}

func (c *Client) CreateWishlistItem(ctx context.Context, w model.WishlistItem) (*model.WishlistItem, error) {
	req := createWishlistRequest{
		ID:               w.ID,
		UserID:           w.UserID,
		UserEmail:        w.UserEmail,
		Title:            w.Title,
		Category:         nullable(w.Category),
		MinPrice:         w.MinPrice,
		MaxPrice:         w.MaxPrice,
		TargetPrice:      w.TargetPrice,
		ItemID:           nullable(w.ItemID),
		EnablePriceAlert: w.EnablePriceAlert,
		Description:      nullable(w.Description),
	}
	var rows []wishlistRow
	if err := c.do(ctx, http.MethodPost, c.restURL(tableWishlist, nil), req, &rows); err != nil {
		return nil, fmt.Errorf("failed to create wishlist item: %w", err)
	}
	if len(rows) == 0 {
		return &w, nil
	}
	created := rows[0].toWishlistItem()
	return &created, nil
}

func (c *Client) UpdateWishlistItem(ctx context.Context, id string, patch model.WishlistPatch) (*model.WishlistItem, error) {
	req := updateWishlistRequest{
		WishlistPatch: patch,
		UpdatedAt:     time.Now().UTC().Format(time.RFC3339Nano),
	}
	var rows []wishlistRow
	q := url.Values{"id": {eq(id)}}
	if err := c.do(ctx, http.MethodPatch, c.restURL(tableWishlist, q), req, &rows); err != nil {
		return nil, fmt.Errorf("failed to update wishlist item: %w", err)
	}
	if len(rows) == 0 {
		return nil, model.ErrWishNotFound
	}
	updated := rows[0].toWishlistItem()
	return &updated, nil
}

func (c *Client) DeleteWishlistItem(ctx context.Context, id string) error {
	q := url.Values{"id": {eq(id)}}
	if err := c.do(ctx, http.MethodDelete, c.restURL(tableWishlist, q), nil, nil); err != nil {
		return fmt.Errorf("failed to delete wishlist item: %w", err)
	}
	return nil
}

func toWishlist(rows []wishlistRow) []model.WishlistItem {
	out := make([]model.WishlistItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toWishlistItem())
	}
	return out
}
