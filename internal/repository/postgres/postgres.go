// Package postgres reaches the hosted database over a direct Postgres
// connection instead of its REST gateway.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// RunAtomic executes fn within a transaction. Store methods called with the
// ctx passed to fn run inside that transaction.
func (s *Store) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback is a no-op once Commit has succeeded.
	defer tx.Rollback(ctx)

	ctx = context.WithValue(ctx, txKey{}, tx)

	if err := fn(ctx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type txKey struct{}

func (s *Store) getExecutor(ctx context.Context) PgxExecutor {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.db
}

// PgxExecutor is an interface that matches both *pgxpool.Pool and pgx.Tx
type PgxExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schema = `
CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    price DOUBLE PRECISION NOT NULL,
    description TEXT,
    category TEXT,
    story TEXT,
    image_url TEXT,
    phone_number TEXT NOT NULL DEFAULT '',
    owner_uid TEXT NOT NULL DEFAULT '',
    owner_email TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS users (
    email TEXT PRIMARY KEY,
    uid TEXT NOT NULL,
    display_name TEXT,
    email_verified BOOLEAN NOT NULL DEFAULT false,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS wishlist (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    user_email TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL,
    category TEXT,
    min_price DOUBLE PRECISION NOT NULL DEFAULT 0,
    max_price DOUBLE PRECISION NOT NULL DEFAULT 0,
    target_price DOUBLE PRECISION NOT NULL DEFAULT 0,
    item_id TEXT,
    enable_price_alert BOOLEAN NOT NULL DEFAULT false,
    description TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS chat_messages (
    id TEXT PRIMARY KEY,
    sender_uid TEXT NOT NULL,
    sender_email TEXT NOT NULL DEFAULT '',
    receiver_uid TEXT NOT NULL,
    receiver_email TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL,
    timestamp BIGINT NOT NULL,
    item_id TEXT NOT NULL DEFAULT '',
    item_title TEXT NOT NULL DEFAULT ''
);
`

// linkedItemPredicate selects wishlist rows that link an item.
const linkedItemPredicate = "item_id IS NOT NULL AND item_id <> ''"

// Duplicate links left by older releases are collapsed onto the oldest entry
// before the index that forbids them is built.
const linkedItemIndex = `
DELETE FROM wishlist w
USING wishlist keep
WHERE w.user_id = keep.user_id
  AND w.item_id = keep.item_id
  AND w.` + linkedItemPredicate + `
  AND (keep.created_at, keep.id) < (w.created_at, w.id);

CREATE UNIQUE INDEX IF NOT EXISTS wishlist_user_item_key
    ON wishlist (user_id, item_id) WHERE ` + linkedItemPredicate + `;
`

// Migrate creates the tables and indexes that do not exist yet, in one
// transaction.
func (s *Store) Migrate(ctx context.Context) error {
	return s.RunAtomic(ctx, func(ctx context.Context) error {
		for _, stmt := range []string{schema, linkedItemIndex} {
			if _, err := s.getExecutor(ctx).Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
		}
		return nil
	})
}

// updateBuilder collects "col = $n" assignments for partial updates.
type updateBuilder struct {
	sets []string
	args []any
}

func (b *updateBuilder) set(col string, v any) {
	b.args = append(b.args, v)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", col, len(b.args)))
}

// build returns "UPDATE table SET ... WHERE key = $n RETURNING returning".
func (b *updateBuilder) build(table, key string, keyValue any, returning string) (string, []any) {
	sets := append(b.sets, "updated_at = now()")
	args := append(b.args, keyValue)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d RETURNING %s",
		table, strings.Join(sets, ", "), key, len(args), returning)
	return sql, args
}
