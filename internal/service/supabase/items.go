package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"campusmarket/trading/internal/model"
)

// ListItems returns the newest items first. Results are cached for
// Config.CacheTTL; item writes made through this client invalidate the cache.
func (c *Client) ListItems(ctx context.Context, limit int) ([]model.Item, error) {
	c.cacheMu.RLock()
	data, ok := c.cacheData[limit]
	if ok && time.Now().Before(data.expiry) {
		c.cacheMu.RUnlock()
		return toItems(data.rows), nil
	}
	c.cacheMu.RUnlock()

	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	// Double check logic
	data, ok = c.cacheData[limit]
	if ok && time.Now().Before(data.expiry) {
		return toItems(data.rows), nil
	}

	var rows []itemRow
	q := limitQuery(selectQuery(nil), limit)
	if err := c.do(ctx, http.MethodGet, c.restURL(tableItems, q), nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	c.cacheData[limit] = cachedItems{
		rows:   rows,
		expiry: time.Now().Add(c.config.CacheTTL),
	}
	return toItems(rows), nil
}

func (c *Client) GetItem(ctx context.Context, id string) (*model.Item, error) {
	var rows []itemRow
	q := selectQuery(map[string]string{"id": id})
	if err := c.do(ctx, http.MethodGet, c.restURL(tableItems, q), nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if len(rows) == 0 {
		return nil, model.ErrItemNotFound
	}
	item := rows[0].toItem()
	return &item, nil
}

func (c *Client) CreateItem(ctx context.Context, item model.Item) (*model.Item, error) {
	var rows []itemRow
	if err := c.do(ctx, http.MethodPost, c.restURL(tableItems, nil), newCreateItemRequest(item), &rows); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	c.invalidateItems()
	if len(rows) == 0 {
		return &item, nil
	}
	created := rows[0].toItem()
	return &created, nil
}

func (c *Client) UpdateItem(ctx context.Context, id string, patch model.ItemPatch) (*model.Item, error) {
	req := updateItemRequest{
		ItemPatch: patch,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	var rows []itemRow
	q := url.Values{"id": {eq(id)}}
	if err := c.do(ctx, http.MethodPatch, c.restURL(tableItems, q), req, &rows); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	c.invalidateItems()
	if len(rows) == 0 {
		return nil, model.ErrItemNotFound
	}
	updated := rows[0].toItem()
	return &updated, nil
}

func (c *Client) DeleteItem(ctx context.Context, id string) error {
	q := url.Values{"id": {eq(id)}}
	if err := c.do(ctx, http.MethodDelete, c.restURL(tableItems, q), nil, nil); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	c.invalidateItems()
	return nil
}

func toItems(rows []itemRow) []model.Item {
	items := make([]model.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toItem())
	}
	return items
}
