// Package postservice coordinates the content provider, the search index and
// dialect rendering for every presentation layer.
package postservice

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/octavio/octavio/internal/content"
	"github.com/octavio/octavio/internal/index"
	"github.com/octavio/octavio/internal/markup"
	"github.com/octavio/octavio/internal/models"
	"github.com/octavio/octavio/internal/render"
)

// PostDetail is the full representation of a post with its converted body.
type PostDetail struct {
	models.Post
	Blocks []markup.Block `json:"blocks"`
	HTML   template.HTML  `json:"html"`
}

// Rendering is the result of converting a piece of dialect text.
type Rendering struct {
	Blocks []markup.Block `json:"blocks"`
	HTML   template.HTML  `json:"html"`
}

// Searcher is the part of the index the service uses.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error)
}

// Service answers post queries for the API, MCP server, HTML site and exporter.
type Service struct {
	posts   content.Provider
	search  Searcher
	profile markup.Profile
}

// Option configures a Service.
type Option func(*Service)

// WithSearcher sets the full-text search backend. Without one, search falls
// back to a case-insensitive scan of the provider.
func WithSearcher(s Searcher) Option {
	return func(svc *Service) { svc.search = s }
}

// WithProfile sets the dialect profile used to convert post bodies.
func WithProfile(p markup.Profile) Option {
	return func(svc *Service) { svc.profile = p }
}

// New creates a post service over posts.
func New(posts content.Provider, opts ...Option) *Service {
	svc := &Service{posts: posts, profile: markup.ProfileFull}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Profile returns the dialect profile posts are converted with.
func (s *Service) Profile() markup.Profile {
	return s.profile
}

// ListPosts returns post summaries, newest first, optionally filtered by
// category (case-insensitive).
func (s *Service) ListPosts(ctx context.Context, category string) ([]models.PostSummary, error) {
	var (
		posts []models.Post
		err   error
	)
	if category == "" {
		posts, err = s.posts.Posts(ctx)
	} else {
		posts, err = content.ByCategory(ctx, s.posts, category)
	}
	if err != nil {
		return nil, fmt.Errorf("postservice: list: %w", err)
	}
	return summaries(posts), nil
}

// Posts returns the full posts, newest first.
func (s *Service) Posts(ctx context.Context) ([]models.Post, error) {
	return s.posts.Posts(ctx)
}

// GetPost returns the post with its blocks and HTML. Unknown slugs yield
// apperr.ErrNotFound.
func (s *Service) GetPost(ctx context.Context, slug string) (*PostDetail, error) {
	p, err := s.posts.PostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	r, err := s.convert(p.Content, s.profile)
	if err != nil {
		return nil, fmt.Errorf("postservice: render %s: %w", slug, err)
	}
	return &PostDetail{Post: *p, Blocks: r.Blocks, HTML: r.HTML}, nil
}

// Related returns up to limit summaries of posts related to slug.
func (s *Service) Related(ctx context.Context, slug string, limit int) ([]models.PostSummary, error) {
	p, err := s.posts.PostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	related, err := content.Related(ctx, s.posts, p, limit)
	if err != nil {
		return nil, fmt.Errorf("postservice: related: %w", err)
	}
	return summaries(related), nil
}

// Categories returns every category with its post count.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	return content.Categories(ctx, s.posts)
}

// Search runs a full-text query.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	if s.search != nil {
		return s.search.Search(ctx, query, limit)
	}

	posts, err := s.posts.Posts(ctx)
	if err != nil {
		return nil, fmt.Errorf("postservice: search: %w", err)
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []index.SearchResult{}, nil
	}
	out := []index.SearchResult{}
	for _, p := range posts {
		if len(out) == limit {
			break
		}
		if strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Content), needle) ||
			strings.Contains(strings.ToLower(p.Category), needle) {
			out = append(out, index.SearchResult{Slug: p.Slug, Title: p.Title, Snippet: p.Excerpt})
		}
	}
	return out, nil
}

// Render converts arbitrary dialect text with the given profile.
func (s *Service) Render(text string, profile markup.Profile) (*Rendering, error) {
	return s.convert(text, profile)
}

func (s *Service) convert(text string, profile markup.Profile) (*Rendering, error) {
	blocks := markup.Convert(text, markup.WithProfile(profile))
	html, err := render.String(blocks)
	if err != nil {
		return nil, err
	}
	return &Rendering{Blocks: blocks, HTML: html}, nil
}

func summaries(posts []models.Post) []models.PostSummary {
	out := make([]models.PostSummary, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Summary())
	}
	return out
}
