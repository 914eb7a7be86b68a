package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/adrg/frontmatter"

	"github.com/octavio/octavio/internal/content"
	"github.com/octavio/octavio/internal/export"
	"github.com/octavio/octavio/internal/markup"
	"github.com/octavio/octavio/internal/mcpserver"
	"github.com/octavio/octavio/internal/render"
	"github.com/octavio/octavio/internal/storage"
)

// Render output formats.
const (
	FormatHTML = "html"
	FormatJSON = "json"
)

// RunMCP serves the MCP protocol on stdin/stdout. Logs go to stderr so stdout
// carries protocol messages only.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, app.config.App.LogLevel)

	env, err := openEnvironment(app.config, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	logger.Info("MCP server starting", slog.String("version", app.version))
	return mcpserver.New(env.svc, app.version).ServeStdio()
}

// RunExport writes the static site to outDir.
func RunExport(ctx context.Context, outDir string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(os.Stderr, cfg.App.LogLevel)

	env, err := openEnvironment(cfg, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	pages, err := env.pages(app.now, false)
	if err != nil {
		return err
	}
	_, err = export.Export(ctx, pages, env.svc, export.Options{
		OutDir:    outDir,
		AssetsDir: cfg.Site.Assets,
	}, logger)
	return err
}

// RenderFile converts one post file (frontmatter optional) and writes the
// result as HTML or as JSON blocks. An empty profile uses the configured one.
func RenderFile(path, format, profile string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	p := app.config.Content.MarkupProfile()
	if profile != "" {
		if p, err = markup.ParseProfile(profile); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	blocks := markup.Convert(string(body), markup.WithProfile(p))
	switch format {
	case "", FormatHTML:
		return render.HTML(app.stdout, blocks)
	case FormatJSON:
		enc := json.NewEncoder(app.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(blocks)
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", format, FormatHTML, FormatJSON)
	}
}

// NewPost scaffolds a post file in the content directory and prints its path.
func NewPost(title, category string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	dir := app.config.Content.Path
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create content dir: %w", err)
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		return err
	}
	path, err := content.Scaffold(store, title, category, app.now())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(app.stdout, path)
	return err
}
