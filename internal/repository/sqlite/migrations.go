package sqlite

import (
	"database/sql"
	"fmt"
)

// schema mirrors the remote tables plus the local-only tables (pending
// registrations, timetable, achievements, unsynced rows). Timestamps are unix milliseconds.
const schema = `
CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    price REAL NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    story TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    phone_number TEXT NOT NULL DEFAULT '',
    owner_uid TEXT NOT NULL DEFAULT '',
    owner_email TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS wishlist (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    user_email TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    min_price REAL NOT NULL DEFAULT 0,
    max_price REAL NOT NULL DEFAULT 0,
    target_price REAL NOT NULL DEFAULT 0,
    item_id TEXT NOT NULL DEFAULT '',
    enable_price_alert INTEGER NOT NULL DEFAULT 0,
    description TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    email TEXT PRIMARY KEY,
    uid TEXT NOT NULL,
    display_name TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL DEFAULT '',
    email_verified INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pending_registrations (
    email TEXT PRIMARY KEY,
    uid TEXT NOT NULL,
    display_name TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    code TEXT NOT NULL,
    expires_at INTEGER NOT NULL,
    attempts INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS chat_messages (
    id TEXT PRIMARY KEY,
    sender_uid TEXT NOT NULL,
    sender_email TEXT NOT NULL DEFAULT '',
    receiver_uid TEXT NOT NULL,
    receiver_email TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL,
    timestamp INTEGER NOT NULL,
    item_id TEXT NOT NULL DEFAULT '',
    item_title TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS timetable_courses (
    academic_year TEXT NOT NULL,
    term INTEGER NOT NULL,
    major TEXT NOT NULL,
    grade_level INTEGER NOT NULL,
    course_code TEXT NOT NULL DEFAULT '',
    course_name_cn TEXT NOT NULL DEFAULT '',
    course_name_en TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS achievements (
    user_id TEXT NOT NULL,
    type TEXT NOT NULL,
    progress INTEGER NOT NULL DEFAULT 0,
    target INTEGER NOT NULL,
    unlocked_at INTEGER,
    PRIMARY KEY (user_id, type)
);

-- Rows written locally that the remote has not acknowledged yet.
CREATE TABLE IF NOT EXISTS unsynced (
    entity TEXT NOT NULL,
    id TEXT NOT NULL,
    PRIMARY KEY (entity, id)
);

CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at);
CREATE INDEX IF NOT EXISTS idx_items_owner_uid ON items(owner_uid);
CREATE INDEX IF NOT EXISTS idx_wishlist_user_id ON wishlist(user_id);
CREATE INDEX IF NOT EXISTS idx_chat_sender ON chat_messages(sender_uid);
CREATE INDEX IF NOT EXISTS idx_chat_receiver ON chat_messages(receiver_uid);
CREATE INDEX IF NOT EXISTS idx_courses_lookup ON timetable_courses(major, grade_level, term);
`

func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	// Columns added after the first release.
	return addColumn(db, "pending_registrations", "attempts", "INTEGER NOT NULL DEFAULT 0")
}

func addColumn(db *sql.DB, table, column, decl string) error {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	if n > 0 {
		return nil
	}
	if _, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl)); err != nil {
		return fmt.Errorf("failed to add %s.%s: %w", table, column, err)
	}
	return nil
}
