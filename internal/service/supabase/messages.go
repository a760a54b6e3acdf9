package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"campusmarket/trading/internal/model"
)

func (c *Client) CreateMessage(ctx context.Context, msg model.ChatMessage) error {
	row := messageRow(msg)
	if err := c.do(ctx, http.MethodPost, c.restURL(tableMessages, nil), row, nil); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListMessagesForUser returns every message the user sent or received,
// oldest first.
func (c *Client) ListMessagesForUser(ctx context.Context, uid string) ([]model.ChatMessage, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("or", fmt.Sprintf("(sender_uid.eq.%s,receiver_uid.eq.%s)", uid, uid))
	q.Set("order", "timestamp.asc")

	var rows []messageRow
	if err := c.do(ctx, http.MethodGet, c.restURL(tableMessages, q), nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	out := make([]model.ChatMessage, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.ChatMessage(r))
	}
	return out, nil
}
