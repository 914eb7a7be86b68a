package index

import (
	"context"
	"log/slog"

	"github.com/octavio/octavio/internal/parser"
	"github.com/octavio/octavio/internal/storage"
)

// SyncResult counts what a Sync pass changed.
type SyncResult struct {
	Indexed   int
	Removed   int
	Unchanged int
	Skipped   int
}

// Sync brings the index in line with the content directory. Stale rows are
// removed before changed files are upserted, so a post moved to a new path
// keeps its slug. Files that fail to parse or collide on slug are skipped
// with a warning and do not fail the pass.
func Sync(ctx context.Context, db *DB, store storage.Provider, logger *slog.Logger) (SyncResult, error) {
	var res SyncResult

	metas, err := store.List("")
	if err != nil {
		return res, err
	}
	indexed, err := db.AllChecksums()
	if err != nil {
		return res, err
	}

	onDisk := make(map[string]string, len(metas))
	for _, m := range metas {
		onDisk[m.Path] = m.Checksum
	}

	for path := range indexed {
		if _, ok := onDisk[path]; ok {
			continue
		}
		if err := db.DeletePath(path); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		res.Removed++
	}

	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if indexed[m.Path] == m.Checksum {
			res.Unchanged++
			continue
		}
		if err := indexFile(db, store, m.Path); err != nil {
			logger.Warn("sync: skipping post", slog.String("path", m.Path), slog.String("error", err.Error()))
			res.Skipped++
			continue
		}
		res.Indexed++
	}

	logger.Debug("sync: done",
		slog.Int("indexed", res.Indexed),
		slog.Int("removed", res.Removed),
		slog.Int("unchanged", res.Unchanged),
		slog.Int("skipped", res.Skipped))
	return res, nil
}

// indexFile reads, parses and upserts one post file.
func indexFile(db *DB, store storage.Provider, path string) error {
	data, err := store.Read(path)
	if err != nil {
		return err
	}
	p, err := parser.ParsePost(path, data, db.parseOpts...)
	if err != nil {
		return err
	}
	return db.UpsertPost(p)
}
