// Package export writes the site as static HTML files.
package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/octavio/octavio/internal/postservice"
	"github.com/octavio/octavio/internal/storage"
	"github.com/octavio/octavio/internal/web"
)

// Options controls an export run.
type Options struct {
	// OutDir receives the generated files. It is created if missing.
	OutDir string
	// AssetsDir, if set, is copied flat to OutDir/assets.
	AssetsDir string
	// Workers bounds concurrent page renders; 0 means GOMAXPROCS.
	Workers int
}

// Result summarises an export.
type Result struct {
	Pages  int
	Assets int
}

// Export renders the home page, one page per post and the 404 page into
// opts.OutDir. Post pages land at blog/<slug>/index.html.
func Export(ctx context.Context, pages *web.Pages, svc *postservice.Service, opts Options, logger *slog.Logger) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create out dir: %w", err)
	}
	out, err := storage.NewFS(opts.OutDir)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	posts, err := svc.Posts(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: list posts: %w", err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	g.Go(func() error {
		return writePage(out, "index.html", func(buf *bytes.Buffer) error {
			return pages.Home(gCtx, buf)
		})
	})
	g.Go(func() error {
		return writePage(out, "404.html", func(buf *bytes.Buffer) error {
			return pages.NotFound(buf)
		})
	})
	for _, p := range posts {
		slug := p.Slug
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			return writePage(out, path.Join("blog", slug, "index.html"), func(buf *bytes.Buffer) error {
				return pages.Post(gCtx, buf, slug)
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Pages: len(posts) + 2}
	if opts.AssetsDir != "" {
		n, err := copyAssets(out, opts.AssetsDir)
		if err != nil {
			return nil, err
		}
		res.Assets = n
	}

	logger.Info("export complete",
		slog.String("out_dir", opts.OutDir),
		slog.Int("pages", res.Pages),
		slog.Int("assets", res.Assets))
	return res, nil
}

func writePage(out storage.Provider, rel string, render func(*bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("export: render %s: %w", rel, err)
	}
	if err := out.Write(rel, buf.Bytes()); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// copyAssets copies the regular, non-hidden files of dir. Subdirectories are
// skipped, matching what the asset route serves.
func copyAssets(out storage.Provider, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("export: read assets: %w", err)
	}
	n := 0
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return n, fmt.Errorf("export: read asset %s: %w", e.Name(), err)
		}
		if err := out.Write(path.Join("assets", e.Name()), data); err != nil {
			return n, fmt.Errorf("export: %w", err)
		}
		n++
	}
	return n, nil
}
