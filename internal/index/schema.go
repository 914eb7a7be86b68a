// Package index keeps a SQLite copy of the post files for lookup and
// full-text search. Build with the sqlite_fts5 tag to enable FTS5.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/octavio/octavio/internal/markup"
)

// schemaVersion is stored in PRAGMA user_version. The index is derived from
// the post files, so a mismatch drops the tables and the next Sync refills them.
const schemaVersion = 2

const postsTableSQL = `
CREATE TABLE IF NOT EXISTS posts (
	path       TEXT PRIMARY KEY,
	slug       TEXT NOT NULL UNIQUE,
	id         TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	excerpt    TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL DEFAULT '',
	date       TEXT NOT NULL,
	category   TEXT NOT NULL DEFAULT '',
	read_time  TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_posts_date ON posts(date DESC);
CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category COLLATE NOCASE);
`

// DB is the post index.
type DB struct {
	conn      *sql.DB
	parseOpts []markup.Option
}

// Option configures a DB.
type Option func(*DB)

// WithProfile sets the dialect profile used to derive excerpts of indexed
// posts.
func WithProfile(p markup.Profile) Option {
	return func(db *DB) {
		db.parseOpts = []markup.Option{markup.WithProfile(p)}
	}
}

// Open opens or creates the index at dsn and migrates it to the current
// schema version.
func Open(dsn string, opts ...Option) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: migrate: %w", err)
	}
	db := &DB{conn: conn}
	for _, opt := range opts {
		opt(db)
	}
	return db, nil
}

func migrate(conn *sql.DB) error {
	var current int
	if err := conn.QueryRow(`PRAGMA user_version`).Scan(&current); err != nil {
		return err
	}
	if current != schemaVersion {
		if _, err := conn.Exec(`DROP TABLE IF EXISTS posts`); err != nil {
			return err
		}
		if err := dropFTS(conn); err != nil {
			return err
		}
	}
	if _, err := conn.Exec(postsTableSQL); err != nil {
		return fmt.Errorf("posts table: %w", err)
	}
	if err := initFTS(conn); err != nil {
		return fmt.Errorf("fts table: %w", err)
	}
	_, err := conn.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion))
	return err
}

// Close closes the database.
func (db *DB) Close() error {
	return db.conn.Close()
}
