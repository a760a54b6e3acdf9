package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campusmarket/trading/internal/model"
)

const itemColumns = `id, title, price, description, category, story, image_url,
	phone_number, owner_uid, owner_email, created_at, updated_at`

// UpsertItems replaces the mirrored copies of items in one transaction.
func (s *Store) UpsertItems(ctx context.Context, items []model.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			price = excluded.price,
			description = excluded.description,
			category = excluded.category,
			story = excluded.story,
			image_url = excluded.image_url,
			phone_number = excluded.phone_number,
			owner_uid = excluded.owner_uid,
			owner_email = excluded.owner_email,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare item upsert: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		_, err := stmt.ExecContext(ctx,
			it.ID, it.Title, it.Price, it.Description, it.Category, it.Story, it.ImageURL,
			it.PhoneNumber, it.OwnerUID, it.OwnerEmail, toMillis(it.CreatedAt), toMillis(it.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert item %s: %w", it.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) ListItems(ctx context.Context, limit int) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM items ORDER BY created_at DESC LIMIT ?",
		limitClause(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return scanItems(rows)
}

func (s *Store) ListItemsByOwner(ctx context.Context, ownerUID string) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE owner_uid = ? ORDER BY created_at DESC",
		ownerUID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list items by owner: %w", err)
	}
	return scanItems(rows)
}

func (s *Store) GetItem(ctx context.Context, id string) (*model.Item, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(sc scanner) (*model.Item, error) {
	var (
		it                   model.Item
		createdAt, updatedAt int64
	)
	err := sc.Scan(
		&it.ID, &it.Title, &it.Price, &it.Description, &it.Category, &it.Story, &it.ImageURL,
		&it.PhoneNumber, &it.OwnerUID, &it.OwnerEmail, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.CreatedAt = fromMillis(createdAt)
	it.UpdatedAt = fromMillis(updatedAt)
	return &it, nil
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}
