package bookstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS books (
	id          TEXT PRIMARY KEY,
	goal        TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS modules (
	id            TEXT PRIMARY KEY,
	book_id       TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
	title         TEXT NOT NULL,
	summary       TEXT NOT NULL DEFAULT '',
	order_index   INTEGER NOT NULL,
	status        TEXT NOT NULL,
	content       TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	retry_count   INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_modules_book_order ON modules(book_id, order_index);

CREATE TABLE IF NOT EXISTS settings (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	provider TEXT NOT NULL,
	model    TEXT NOT NULL,
	keys     TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS bookmarks (
	book_id    TEXT PRIMARY KEY REFERENCES books(id) ON DELETE CASCADE,
	module_id  TEXT NOT NULL,
	position   INTEGER NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS credit_ledger (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	book_id    TEXT NOT NULL DEFAULT '',
	delta      INTEGER NOT NULL,
	reason     TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return wrapStorage("init schema", err)
	}

	var version int
	err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
			return wrapStorage("init schema", err)
		}
	case err != nil:
		return wrapStorage("init schema", err)
	case version > schemaVersion:
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, schemaVersion)
	}
	return nil
}
