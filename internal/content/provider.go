// Package content provides read-only access to the site's posts.
package content

import (
	"context"
	"sort"
	"strings"

	"github.com/octavio/octavio/internal/models"
)

// Provider is the read-only content capability the site, API and MCP server
// depend on.
type Provider interface {
	// PostBySlug returns the post with the given slug or apperr.ErrNotFound.
	PostBySlug(ctx context.Context, slug string) (*models.Post, error)
	// Posts returns every post, newest first. Posts sharing a date keep a
	// stable order.
	Posts(ctx context.Context) ([]models.Post, error)
}

// ByCategory returns the posts whose category matches case-insensitively,
// newest first.
func ByCategory(ctx context.Context, p Provider, category string) ([]models.Post, error) {
	posts, err := p.Posts(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Post
	for _, post := range posts {
		if strings.EqualFold(post.Category, category) {
			out = append(out, post)
		}
	}
	return out, nil
}

// Related returns up to limit other posts: same category first, then the
// remaining posts, each group newest first.
func Related(ctx context.Context, p Provider, post *models.Post, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = 3
	}
	posts, err := p.Posts(ctx)
	if err != nil {
		return nil, err
	}
	var same, other []models.Post
	for _, candidate := range posts {
		if candidate.Slug == post.Slug {
			continue
		}
		if strings.EqualFold(candidate.Category, post.Category) {
			same = append(same, candidate)
		} else {
			other = append(other, candidate)
		}
	}
	out := append(same, other...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Categories counts posts per category, sorted by name.
func Categories(ctx context.Context, p Provider) ([]models.Category, error) {
	posts, err := p.Posts(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, post := range posts {
		if post.Category == "" {
			continue
		}
		counts[post.Category]++
	}
	out := make([]models.Category, 0, len(counts))
	for name, n := range counts {
		out = append(out, models.Category{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
