package content

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/octavio/octavio/internal/apperr"
	"github.com/octavio/octavio/internal/models"
	"github.com/octavio/octavio/internal/slug"
	"github.com/octavio/octavio/internal/storage"
)

type scaffoldFrontMatter struct {
	Title    string `yaml:"title"`
	Date     string `yaml:"date"`
	Category string `yaml:"category,omitempty"`
	Slug     string `yaml:"slug"`
}

// Scaffold writes a new post skeleton named <slug>.md and returns its path.
// An existing file with the same name is never overwritten.
func Scaffold(store storage.Provider, title, category string, now time.Time) (string, error) {
	title = strings.TrimSpace(title)
	s := slug.Make(title)
	if s == "" {
		return "", fmt.Errorf("content: scaffold: title %q yields an empty slug", title)
	}
	path := s + ".md"

	if _, err := store.Read(path); err == nil {
		return "", fmt.Errorf("content: scaffold %s: %w", path, apperr.ErrAlreadyExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("content: scaffold %s: %w", path, err)
	}

	fm, err := yaml.Marshal(scaffoldFrontMatter{
		Title:    title,
		Date:     now.Format(models.DateLayout),
		Category: strings.TrimSpace(category),
		Slug:     s,
	})
	if err != nil {
		return "", fmt.Errorf("content: scaffold: marshal frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\nGreetings, humans!\n\n## Overview\n\n- First point\n")
	if err := store.Write(path, []byte(b.String())); err != nil {
		return "", err
	}
	return path, nil
}
