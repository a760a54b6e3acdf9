package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"campusmarket/trading/internal/model"
)

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.getExecutor(ctx).QueryRow(ctx, `
		SELECT email, uid, COALESCE(display_name, ''), email_verified, created_at, updated_at
		FROM users WHERE email = $1`, email,
	).Scan(&u.Email, &u.UID, &u.DisplayName, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, user model.User) error {
	_, err := s.getExecutor(ctx).Exec(ctx, `
		INSERT INTO users (email, uid, display_name, email_verified)
		VALUES ($1, $2, NULLIF($3, ''), $4)`,
		user.Email, user.UID, user.DisplayName, user.EmailVerified,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, email string, patch model.UserPatch) error {
	var b updateBuilder
	if patch.DisplayName != nil {
		b.set("display_name", *patch.DisplayName)
	}
	if patch.EmailVerified != nil {
		b.set("email_verified", *patch.EmailVerified)
	}

	query, args := b.build("users", "email", email, "email")
	var got string
	if err := s.getExecutor(ctx).QueryRow(ctx, query, args...).Scan(&got); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrUserNotFound
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, email string) error {
	if _, err := s.getExecutor(ctx).Exec(ctx, "DELETE FROM users WHERE email = $1", email); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
