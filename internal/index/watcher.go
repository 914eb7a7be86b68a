package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/octavio/octavio/internal/storage"
)

// ChangeKind classifies a watcher-driven index change.
type ChangeKind string

const (
	PostCreated ChangeKind = "created"
	PostUpdated ChangeKind = "updated"
	PostDeleted ChangeKind = "deleted"
)

// EventCallback is called after a watcher-driven index change. path is
// relative to the content root with forward slashes.
type EventCallback func(kind ChangeKind, path string)

const reconcileDelay = 200 * time.Millisecond

type watcher struct {
	db     *DB
	store  storage.Provider
	root   string
	logger *slog.Logger
	cb     EventCallback
}

// Watch starts an fsnotify watcher on the content root and processes file
// change events until ctx is cancelled. It calls cb (if non-nil) after
// each successful index mutation.
//
// Directories created at runtime are added to the watch list. Rename events
// delete the old path and schedule a debounced reconciliation pass that
// picks up the new one.
func Watch(ctx context.Context, db *DB, store storage.Provider, contentRoot string, logger *slog.Logger, cb EventCallback) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addDirsRecursive(fw, contentRoot); err != nil {
		return err
	}

	w := &watcher{db: db, store: store, root: contentRoot, logger: logger, cb: cb}
	logger.Info("watcher: started", slog.String("root", contentRoot))

	reconcile := time.NewTimer(reconcileDelay)
	if !reconcile.Stop() {
		<-reconcile.C
	}
	defer reconcile.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case <-reconcile.C:
			w.reconcile()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if strings.HasPrefix(info.Name(), ".") {
						continue
					}
					if addErr := addDirsRecursive(fw, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed", slog.String("path", ev.Name), slog.String("error", addErr.Error()))
					}
					w.indexDir(ev.Name)
					continue
				}
			}
			if w.handle(ev) {
				reconcile.Reset(reconcileDelay)
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// handle applies one file event to the index and reports whether a
// reconciliation pass is needed.
func (w *watcher) handle(ev fsnotify.Event) bool {
	rel, ok := w.relPost(ev.Name)
	if !ok {
		return false
	}

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		kind := PostUpdated
		if ev.Op&fsnotify.Create != 0 {
			kind = PostCreated
		}
		w.index(rel, kind)

	case ev.Op&fsnotify.Remove != 0:
		w.delete(rel)

	case ev.Op&fsnotify.Rename != 0:
		// fsnotify reports the old path only; the new one arrives as a
		// Create when it stays inside a watched directory.
		w.delete(rel)
		return true
	}
	return false
}

// relPost maps an absolute event path to a content-relative post path. Files
// under hidden directories are not posts, matching storage.List.
func (w *watcher) relPost(abs string) (string, bool) {
	if !strings.HasSuffix(abs, ".md") {
		return "", false
	}
	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if hidden(rel) {
		return "", false
	}
	return rel, true
}

// hidden reports whether any segment of a slash-separated path starts with a dot.
func hidden(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

func (w *watcher) index(rel string, kind ChangeKind) {
	if err := indexFile(w.db, w.store, rel); err != nil {
		w.logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", string(kind)))
	w.notify(kind, rel)
}

func (w *watcher) delete(rel string) {
	if err := w.db.DeletePath(rel); err != nil {
		w.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: deleted", slog.String("path", rel))
	w.notify(PostDeleted, rel)
}

func (w *watcher) notify(kind ChangeKind, rel string) {
	if w.cb != nil {
		w.cb(kind, rel)
	}
}

// reconcile removes index entries whose files are gone and indexes files
// whose checksum differs from the stored one.
func (w *watcher) reconcile() {
	checksums, err := w.db.AllChecksums()
	if err != nil {
		w.logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	metas, err := w.store.List("")
	if err != nil {
		w.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			w.delete(p)
		}
	}
	for p, cs := range disk {
		if checksums[p] != cs {
			w.index(p, PostCreated)
		}
	}
}

// indexDir indexes any .md files found in a newly created directory.
func (w *watcher) indexDir(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if rel, ok := w.relPost(path); ok {
			w.index(rel, PostCreated)
		}
		return nil
	})
}

// addDirsRecursive adds root and its non-hidden subdirectories to the
// watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
