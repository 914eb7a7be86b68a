// Package models defines the domain types for the site.
package models

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DateLayout is the layout of Post.Date.
const DateLayout = "2006-01-02"

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Post is a parsed blog post file.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content"`
	Date        string    `json:"date"`
	Category    string    `json:"category"`
	ReadTime    string    `json:"read_time"`
	Slug        string    `json:"slug"`
	Path        string    `json:"path,omitempty"`
	Checksum    string    `json:"checksum,omitempty"`
	PublishedAt time.Time `json:"-"`
}

// Validate checks the fields every post must carry.
func (p *Post) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Slug, validation.Required, validation.Match(slugRe)),
		validation.Field(&p.Date, validation.Required, validation.Date(DateLayout)),
	)
}

// Summary drops the body for list responses.
func (p Post) Summary() PostSummary {
	return PostSummary{
		ID:       p.ID,
		Title:    p.Title,
		Excerpt:  p.Excerpt,
		Date:     p.Date,
		Category: p.Category,
		ReadTime: p.ReadTime,
		Slug:     p.Slug,
	}
}

// PostSummary is the lightweight representation returned by list operations.
type PostSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Date     string `json:"date"`
	Category string `json:"category"`
	ReadTime string `json:"read_time"`
	Slug     string `json:"slug"`
}

// FileMetadata describes a post file in the content directory.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category is a post category with the number of posts in it.
type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
