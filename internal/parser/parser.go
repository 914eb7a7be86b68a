// Package parser turns post files (YAML frontmatter + dialect body) into
// models.Post values.
package parser

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/adrg/frontmatter"
	"github.com/google/uuid"

	"github.com/octavio/octavio/internal/markup"
	"github.com/octavio/octavio/internal/models"
	"github.com/octavio/octavio/internal/slug"
	"github.com/octavio/octavio/internal/storage"
)

const (
	wordsPerMinute = 225
	excerptRunes   = 200
)

// postNamespace seeds the UUIDv5 identifiers of posts without an explicit id.
var postNamespace = uuid.MustParse("6f63746f-7075-7300-8000-6465657073ea")

type frontMatter struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Excerpt  string `yaml:"excerpt"`
	Date     string `yaml:"date"`
	Category string `yaml:"category"`
	ReadTime string `yaml:"read_time"`
	Slug     string `yaml:"slug"`
}

// ParsePost parses one post file. Missing slug, id, read time and excerpt are
// derived from the title and body; the result is validated. opts select the
// dialect profile the excerpt is taken from, so it matches the rendered page.
func ParsePost(path string, data []byte, opts ...markup.Option) (*models.Post, error) {
	var fm frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		return nil, fmt.Errorf("parser: %s: frontmatter: %w", path, err)
	}
	content := strings.TrimLeft(string(body), "\r\n")

	p := &models.Post{
		ID:       strings.TrimSpace(fm.ID),
		Title:    strings.TrimSpace(fm.Title),
		Excerpt:  strings.TrimSpace(fm.Excerpt),
		Content:  content,
		Date:     strings.TrimSpace(fm.Date),
		Category: strings.TrimSpace(fm.Category),
		ReadTime: strings.TrimSpace(fm.ReadTime),
		Slug:     strings.TrimSpace(fm.Slug),
		Path:     path,
		Checksum: storage.Checksum(data),
	}

	if p.Slug == "" {
		p.Slug = slug.Make(p.Title)
	}
	if p.ID == "" && p.Slug != "" {
		p.ID = uuid.NewSHA1(postNamespace, []byte(p.Slug)).String()
	}
	if p.ReadTime == "" {
		p.ReadTime = ReadTime(content)
	}
	if p.Excerpt == "" {
		p.Excerpt = truncate(markup.FirstParagraph(markup.Convert(content, opts...)), excerptRunes)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("parser: %s: %w", path, err)
	}
	p.PublishedAt, _ = time.Parse(models.DateLayout, p.Date)
	return p, nil
}

// ReadTime estimates reading time as "N min read".
func ReadTime(content string) string {
	minutes := len(strings.Fields(content)) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}
