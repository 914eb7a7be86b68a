package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/octavio/octavio/internal/content"
	"github.com/octavio/octavio/internal/index"
	"github.com/octavio/octavio/internal/markup"
	"github.com/octavio/octavio/internal/postservice"
	"github.com/octavio/octavio/internal/storage"
	"github.com/octavio/octavio/internal/web"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", stdout: os.Stdout, now: time.Now}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger builds the structured JSON logger used by every command.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// environment holds the components shared by serve, mcp and export.
type environment struct {
	cfg    *Config
	logger *slog.Logger
	store  storage.Provider
	db     *index.DB
	live   *content.Live
	svc    *postservice.Service
}

func openEnvironment(cfg *Config, logger *slog.Logger) (*environment, error) {
	if err := os.MkdirAll(cfg.Content.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create content dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Content.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path, index.WithProfile(cfg.Content.MarkupProfile()))
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	if _, err := index.Sync(context.Background(), db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	env := &environment{cfg: cfg, logger: logger, store: store, db: db}

	var provider content.Provider = db
	if cfg.Content.Source == SourceMemory {
		live, err := content.NewLive(store, logger, markup.WithProfile(cfg.Content.MarkupProfile()))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("load content: %w", err)
		}
		env.live = live
		provider = live
	}

	env.svc = postservice.New(provider,
		postservice.WithSearcher(db),
		postservice.WithProfile(cfg.Content.MarkupProfile()),
	)
	return env, nil
}

// reload refreshes the in-memory snapshot after the index changed. It is a
// no-op for the sqlite source.
func (e *environment) reload() {
	if e.live == nil {
		return
	}
	if err := e.live.Reload(); err != nil {
		e.logger.Warn("content reload failed", slog.String("error", err.Error()))
	}
}

// resync re-indexes the content directory and refreshes the snapshot.
func (e *environment) resync(ctx context.Context) error {
	res, err := index.Sync(ctx, e.db, e.store, e.logger)
	if err != nil {
		return err
	}
	if res.Indexed > 0 || res.Removed > 0 {
		e.logger.Info("resync applied changes",
			slog.Int("indexed", res.Indexed),
			slog.Int("removed", res.Removed))
		e.reload()
	}
	return nil
}

func (e *environment) pages(now func() time.Time, liveReload bool) (*web.Pages, error) {
	site, err := web.LoadSite(e.cfg.Site.Path)
	if err != nil {
		return nil, fmt.Errorf("load site: %w", err)
	}
	return web.NewPages(site, e.svc, web.WithClock(now), web.WithLiveReload(liveReload))
}

func (e *environment) Close() error {
	return e.db.Close()
}
