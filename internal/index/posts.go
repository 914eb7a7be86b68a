package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/octavio/octavio/internal/apperr"
	"github.com/octavio/octavio/internal/models"
)

// SearchResult represents one search hit.
type SearchResult struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

const postColumns = `id, title, excerpt, content, date, category, read_time, slug, path, checksum`

// UpsertPost inserts or replaces a post and its FTS entry within a transaction.
// A slug already owned by another path yields apperr.ErrConflict.
func (db *DB) UpsertPost(p *models.Post) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO posts (path, slug, id, title, excerpt, content, date, category, read_time, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			slug       = excluded.slug,
			id         = excluded.id,
			title      = excluded.title,
			excerpt    = excluded.excerpt,
			content    = excluded.content,
			date       = excluded.date,
			category   = excluded.category,
			read_time  = excluded.read_time,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, p.Path, p.Slug, p.ID, p.Title, p.Excerpt, p.Content, p.Date, p.Category, p.ReadTime, p.Checksum, time.Now().UTC())
	if err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("index: slug %q: %w", p.Slug, apperr.ErrConflict)
		}
		return fmt.Errorf("index: upsert post: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

// DeletePath removes the post stored for a file path and its FTS entry.
func (db *DB) DeletePath(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	if _, err := tx.Exec(`DELETE FROM posts WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete post: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a path, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM posts WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed post.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM posts`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// PostBySlug returns the indexed post with the given slug or apperr.ErrNotFound.
func (db *DB) PostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: post by slug: %w", err)
	}
	return p, nil
}

// Posts returns every indexed post, newest first. Ties are ordered by path.
func (db *DB) Posts(ctx context.Context) ([]models.Post, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY date DESC, path ASC`)
	if err != nil {
		return nil, fmt.Errorf("index: posts: %w", err)
	}
	defer rows.Close()

	var out []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*models.Post, error) {
	var p models.Post
	if err := s.Scan(&p.ID, &p.Title, &p.Excerpt, &p.Content, &p.Date, &p.Category, &p.ReadTime, &p.Slug, &p.Path, &p.Checksum); err != nil {
		return nil, err
	}
	p.PublishedAt, _ = time.Parse(models.DateLayout, p.Date)
	return &p, nil
}

func scanResults(rows *sql.Rows) ([]SearchResult, error) {
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Slug, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
