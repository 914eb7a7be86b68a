//go:build sqlite_fts5

package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/octavio/octavio/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS posts_fts USING fts5(
			path UNINDEXED,
			slug UNINDEXED,
			title,
			content,
			category,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func dropFTS(conn *sql.DB) error {
	_, err := conn.Exec(`DROP TABLE IF EXISTS posts_fts`)
	return err
}

func ftsUpsert(tx *sql.Tx, p *models.Post) error {
	if _, err := tx.Exec(`DELETE FROM posts_fts WHERE path = ?`, p.Path); err != nil {
		return fmt.Errorf("index: clear fts row: %w", err)
	}
	_, err := tx.Exec(`INSERT INTO posts_fts (path, slug, title, content, category) VALUES (?, ?, ?, ?, ?)`,
		p.Path, p.Slug, p.Title, p.Content, p.Category)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) {
	_, _ = tx.Exec(`DELETE FROM posts_fts WHERE path = ?`, path)
}

// ftsQuery turns free text into an FTS5 query where every word must appear.
// Words are quoted so operators and punctuation in user input stay literal.
func ftsQuery(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(words, " ")
}

// Search ranks posts by FTS5 relevance with a highlighted body snippet.
func (db *DB) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT slug,
		       title,
		       snippet(posts_fts, 3, '<b>', '</b>', '...', 32)
		FROM posts_fts
		WHERE posts_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanResults(rows)
}
