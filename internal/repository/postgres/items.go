package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"campusmarket/trading/internal/model"
)

const itemColumns = `id, title, price, COALESCE(description, ''), COALESCE(category, ''),
	COALESCE(story, ''), COALESCE(image_url, ''), phone_number, owner_uid, owner_email,
	created_at, updated_at`

func (s *Store) ListItems(ctx context.Context, limit int) ([]model.Item, error) {
	query := "SELECT " + itemColumns + " FROM items ORDER BY created_at DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.getExecutor(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
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

func (s *Store) GetItem(ctx context.Context, id string) (*model.Item, error) {
	row := s.getExecutor(ctx).QueryRow(ctx, "SELECT "+itemColumns+" FROM items WHERE id = $1", id)
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return it, nil
}

func (s *Store) CreateItem(ctx context.Context, item model.Item) (*model.Item, error) {
	row := s.getExecutor(ctx).QueryRow(ctx, `
		INSERT INTO items (id, title, price, description, category, story, image_url, phone_number, owner_uid, owner_email)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10)
		RETURNING `+itemColumns,
		item.ID, item.Title, item.Price, item.Description, item.Category, item.Story, item.ImageURL,
		item.PhoneNumber, item.OwnerUID, item.OwnerEmail,
	)
	created, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return created, nil
}

func (s *Store) UpdateItem(ctx context.Context, id string, patch model.ItemPatch) (*model.Item, error) {
	var b updateBuilder
	if patch.Title != nil {
		b.set("title", *patch.Title)
	}
	if patch.Price != nil {
		b.set("price", *patch.Price)
	}
	if patch.Description != nil {
		b.set("description", *patch.Description)
	}
	if patch.Category != nil {
		b.set("category", *patch.Category)
	}
	if patch.Story != nil {
		b.set("story", *patch.Story)
	}
	if patch.ImageURL != nil {
		b.set("image_url", *patch.ImageURL)
	}
	if patch.PhoneNumber != nil {
		b.set("phone_number", *patch.PhoneNumber)
	}

	query, args := b.build("items", "id", id, itemColumns)
	updated, err := scanItem(s.getExecutor(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return updated, nil
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	if _, err := s.getExecutor(ctx).Exec(ctx, "DELETE FROM items WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

func scanItem(row pgx.Row) (*model.Item, error) {
	var it model.Item
	err := row.Scan(
		&it.ID, &it.Title, &it.Price, &it.Description, &it.Category, &it.Story, &it.ImageURL,
		&it.PhoneNumber, &it.OwnerUID, &it.OwnerEmail, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
