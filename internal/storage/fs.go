package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/octavio/octavio/internal/models"
)

const tmpPrefix = ".octavio-tmp-"

// FS implements Provider backed by a local directory. Every access goes
// through os.Root, so symlinks and ".." cannot leave the content root.
type FS struct {
	root string // absolute path to the content directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute content directory.
func (f *FS) Root() string {
	return f.root
}

// clean validates a caller path and returns it in slash form. Empty means the
// root itself.
func clean(rel string) (string, error) {
	if rel == "" {
		return ".", nil
	}
	p := path.Clean(filepath.ToSlash(rel))
	if !fs.ValidPath(p) {
		return "", fmt.Errorf("storage: path escapes content root: %s", rel)
	}
	return p, nil
}

func (f *FS) open() (*os.Root, error) {
	r, err := os.OpenRoot(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: open root: %w", err)
	}
	return r, nil
}

// List walks dir (relative to root) and returns metadata for every .md file.
// Hidden files and directories are skipped. Returned paths use forward
// slashes.
func (f *FS) List(dir string) ([]models.FileMetadata, error) {
	base, err := clean(dir)
	if err != nil {
		return nil, err
	}
	r, err := f.open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	fsys := r.FS()
	var out []models.FileMetadata
	err = fs.WalkDir(fsys, base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p != base && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || path.Ext(p) != ".md" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		out = append(out, models.FileMetadata{
			Path:      p,
			Checksum:  Checksum(data),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a content file. A missing file yields an
// error matching fs.ErrNotExist.
func (f *FS) Read(name string) ([]byte, error) {
	p, err := clean(name)
	if err != nil {
		return nil, err
	}
	r, err := f.open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := r.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

// Write atomically replaces name with content: a hidden temp file in the
// same directory is written, synced and renamed over the target.
func (f *FS) Write(name string, content []byte) (err error) {
	p, err := clean(name)
	if err != nil {
		return err
	}
	if p == "." {
		return errors.New("storage: write: empty path")
	}
	r, err := f.open()
	if err != nil {
		return err
	}
	defer r.Close()

	dir := path.Dir(p)
	if err := r.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmpName := path.Join(dir, tmpPrefix+uuid.NewString())
	tmp, err := r.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = r.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err = r.Rename(tmpName, p); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	return nil
}
