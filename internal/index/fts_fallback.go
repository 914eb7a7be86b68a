//go:build !sqlite_fts5

package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/octavio/octavio/internal/models"
)

func initFTS(*sql.DB) error { return nil }

func dropFTS(*sql.DB) error { return nil }

// Without FTS5 the posts table is scanned directly.
func ftsUpsert(*sql.Tx, *models.Post) error { return nil }

func ftsDelete(*sql.Tx, string) {}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches query as a literal substring of the title, body or
// category, newest first. The excerpt serves as the snippet.
func (db *DB) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	like := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.conn.QueryContext(ctx, `
		SELECT slug, title, excerpt
		FROM posts
		WHERE title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\' OR category LIKE ? ESCAPE '\'
		ORDER BY date DESC, path
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanResults(rows)
}
