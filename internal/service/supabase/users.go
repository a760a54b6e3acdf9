package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"campusmarket/trading/internal/model"
)

// GetUserByEmail looks a user up by lowercased email. The remote table never
// carries password hashes.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var rows []userRow
	q := selectQuery(map[string]string{"email": email})
	if err := c.do(ctx, http.MethodGet, c.restURL(tableUsers, q), nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if len(rows) == 0 {
		return nil, model.ErrUserNotFound
	}
	user := rows[0].toUser()
	return &user, nil
}

func (c *Client) CreateUser(ctx context.Context, user model.User) error {
	req := createUserRequest{
		Email:         user.Email,
		UID:           user.UID,
		DisplayName:   nullable(user.DisplayName),
		EmailVerified: user.EmailVerified,
	}
	if err := c.do(ctx, http.MethodPost, c.restURL(tableUsers, nil), req, nil); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (c *Client) UpdateUser(ctx context.Context, email string, patch model.UserPatch) error {
	q := url.Values{"email": {eq(email)}}
	if err := c.do(ctx, http.MethodPatch, c.restURL(tableUsers, q), patch, nil); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (c *Client) DeleteUser(ctx context.Context, email string) error {
	q := url.Values{"email": {eq(email)}}
	if err := c.do(ctx, http.MethodDelete, c.restURL(tableUsers, q), nil, nil); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
