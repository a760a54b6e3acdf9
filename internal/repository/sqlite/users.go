package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campusmarket/trading/internal/model"
)

// UpsertUser stores user. An empty PasswordHash keeps the stored hash, since
// remote user rows never carry one.
func (s *Store) UpsertUser(ctx context.Context, user model.User) error {
	query := `
		INSERT INTO users (email, uid, display_name, password_hash, email_verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			uid = excluded.uid,
			display_name = excluded.display_name,
			password_hash = CASE WHEN excluded.password_hash = '' THEN users.password_hash ELSE excluded.password_hash END,
			email_verified = excluded.email_verified,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		user.Email,
		user.UID,
		user.DisplayName,
		user.PasswordHash,
		boolToInt(user.EmailVerified),
		toMillis(user.CreatedAt),
		toMillis(user.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT email, uid, display_name, password_hash, email_verified, created_at, updated_at
		FROM users
		WHERE email = ?
	`
	var (
		user                 model.User
		verified             int
		createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.Email,
		&user.UID,
		&user.DisplayName,
		&user.PasswordHash,
		&verified,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	user.EmailVerified = verified != 0
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return &user, nil
}

func (s *Store) UpdatePassword(ctx context.Context, email, hash string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE email = ?",
		hash, time.Now().UnixMilli(), email,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, email string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE email = ?", email); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (s *Store) SavePendingRegistration(ctx context.Context, p model.PendingRegistration) error {
	query := `
		INSERT INTO pending_registrations (email, uid, display_name, password_hash, code, expires_at, attempts)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			uid = excluded.uid,
			display_name = excluded.display_name,
			password_hash = excluded.password_hash,
			code = excluded.code,
			expires_at = excluded.expires_at,
			attempts = excluded.attempts
	`
	_, err := s.db.ExecContext(ctx, query,
		p.Email, p.UID, p.DisplayName, p.PasswordHash, p.Code, p.ExpiresAt.UnixMilli(), p.Attempts,
	)
	if err != nil {
		return fmt.Errorf("failed to save pending registration: %w", err)
	}
	return nil
}

// GetPendingRegistration returns model.ErrNotFound when no registration is
// waiting for email.
func (s *Store) GetPendingRegistration(ctx context.Context, email string) (*model.PendingRegistration, error) {
	var (
		p         model.PendingRegistration
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT email, uid, display_name, password_hash, code, expires_at, attempts FROM pending_registrations WHERE email = ?",
		email,
	).Scan(&p.Email, &p.UID, &p.DisplayName, &p.PasswordHash, &p.Code, &expiresAt, &p.Attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending registration: %w", err)
	}
	p.ExpiresAt = fromMillis(expiresAt)
	return &p, nil
}

func (s *Store) DeletePendingRegistration(ctx context.Context, email string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM pending_registrations WHERE email = ?", email); err != nil {
		return fmt.Errorf("failed to delete pending registration: %w", err)
	}
	return nil
}
