package content

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/octavio/octavio/internal/apperr"
	"github.com/octavio/octavio/internal/markup"
	"github.com/octavio/octavio/internal/models"
	"github.com/octavio/octavio/internal/parser"
	"github.com/octavio/octavio/internal/storage"
)

// Catalog is an immutable in-memory snapshot of posts.
type Catalog struct {
	posts  []models.Post
	bySlug map[string]int
}

var _ Provider = (*Catalog)(nil)

// NewCatalog builds a snapshot. IDs and slugs must be unique.
func NewCatalog(posts []models.Post) (*Catalog, error) {
	sorted := slices.Clone(posts)
	slices.SortStableFunc(sorted, func(a, b models.Post) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})

	c := &Catalog{posts: sorted, bySlug: make(map[string]int, len(sorted))}
	ids := make(map[string]struct{}, len(sorted))
	for i, p := range sorted {
		if _, dup := c.bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("content: duplicate slug %q: %w", p.Slug, apperr.ErrConflict)
		}
		if _, dup := ids[p.ID]; dup {
			return nil, fmt.Errorf("content: duplicate id %q: %w", p.ID, apperr.ErrConflict)
		}
		c.bySlug[p.Slug] = i
		ids[p.ID] = struct{}{}
	}
	return c, nil
}

// LoadCatalog parses every post file in store. Files that fail to parse are
// skipped with a warning; duplicate slugs fail the load.
func LoadCatalog(store storage.Provider, logger *slog.Logger, opts ...markup.Option) (*Catalog, error) {
	metas, err := store.List("")
	if err != nil {
		return nil, fmt.Errorf("content: list: %w", err)
	}
	posts := make([]models.Post, 0, len(metas))
	for _, m := range metas {
		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("content: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		p, err := parser.ParsePost(m.Path, data, opts...)
		if err != nil {
			logger.Warn("content: skipping post", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		posts = append(posts, *p)
	}
	return NewCatalog(posts)
}

// PostBySlug implements Provider.
func (c *Catalog) PostBySlug(_ context.Context, slug string) (*models.Post, error) {
	i, ok := c.bySlug[slug]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	p := c.posts[i]
	return &p, nil
}

// Posts implements Provider. The returned slice is a copy.
func (c *Catalog) Posts(_ context.Context) ([]models.Post, error) {
	return slices.Clone(c.posts), nil
}

// Len returns the number of posts in the snapshot.
func (c *Catalog) Len() int {
	return len(c.posts)
}

// Live serves the current snapshot and swaps in a new one on Reload.
type Live struct {
	store     storage.Provider
	logger    *slog.Logger
	parseOpts []markup.Option
	current   atomic.Pointer[Catalog]
}

var _ Provider = (*Live)(nil)

// NewLive loads the initial snapshot from store.
func NewLive(store storage.Provider, logger *slog.Logger, opts ...markup.Option) (*Live, error) {
	l := &Live{store: store, logger: logger, parseOpts: opts}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload builds a fresh snapshot. On failure the previous one stays active.
func (l *Live) Reload() error {
	c, err := LoadCatalog(l.store, l.logger, l.parseOpts...)
	if err != nil {
		return err
	}
	l.current.Store(c)
	l.logger.Debug("content: snapshot loaded", slog.Int("posts", c.Len()))
	return nil
}

// Snapshot returns the active catalog.
func (l *Live) Snapshot() *Catalog {
	return l.current.Load()
}

// PostBySlug implements Provider.
func (l *Live) PostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return l.Snapshot().PostBySlug(ctx, slug)
}

// Posts implements Provider.
func (l *Live) Posts(ctx context.Context) ([]models.Post, error) {
	return l.Snapshot().Posts(ctx)
}
