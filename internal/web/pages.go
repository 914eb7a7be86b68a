package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/octavio/octavio/internal/models"
	"github.com/octavio/octavio/internal/postservice"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	longDateLayout = "January 2, 2006"
	relatedLimit   = 3
)

var funcs = template.FuncMap{
	"longDate": longDate,
	"statusClass": func(status string) string {
		switch status {
		case "Active":
			return "status-active"
		case "Beta":
			return "status-beta"
		default:
			return "status-planned"
		}
	},
	"join": strings.Join,
}

// longDate formats a YYYY-MM-DD date as "January 2, 2006". Unparsable input
// is returned unchanged.
func longDate(date string) string {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(longDateLayout)
}

// Pages renders the site's HTML pages.
type Pages struct {
	site       *Site
	svc        *postservice.Service
	about      template.HTML
	now        func() time.Time
	liveReload bool
	tmpl       map[string]*template.Template
}

// PagesOption configures Pages.
type PagesOption func(*Pages)

// WithClock overrides the clock used for the days-active stat.
func WithClock(now func() time.Time) PagesOption {
	return func(p *Pages) { p.now = now }
}

// WithLiveReload makes post pages reload on site.updated events.
func WithLiveReload(enabled bool) PagesOption {
	return func(p *Pages) { p.liveReload = enabled }
}

// NewPages parses the embedded templates and pre-renders the about prose.
func NewPages(site *Site, svc *postservice.Service, opts ...PagesOption) (*Pages, error) {
	about, err := proseHTML(site.About.Body)
	if err != nil {
		return nil, fmt.Errorf("web: render about: %w", err)
	}
	p := &Pages{site: site, svc: svc, about: about, now: time.Now, tmpl: make(map[string]*template.Template)}
	for _, opt := range opts {
		opt(p)
	}
	for _, name := range []string{"home", "post", "notfound"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("web: parse %s template: %w", name, err)
		}
		p.tmpl[name] = t
	}
	return p, nil
}

type page struct {
	Site       *Site
	Title      string
	Summary    string
	LiveReload bool
}

type homePage struct {
	page
	Posts      []models.Post
	About      template.HTML
	DaysActive int
}

type postPage struct {
	page
	Post     *postservice.PostDetail
	LongDate string
	Related  []models.PostSummary
}

// Home writes the landing page.
func (p *Pages) Home(ctx context.Context, w io.Writer) error {
	posts, err := p.svc.Posts(ctx)
	if err != nil {
		return err
	}
	return p.execute(w, "home", homePage{
		page:       page{Site: p.site, Title: p.site.Title, Summary: p.site.Description},
		Posts:      posts,
		About:      p.about,
		DaysActive: p.site.Stats.DaysActive(p.now()),
	})
}

// Post writes the page of one post. Unknown slugs yield apperr.ErrNotFound
// and nothing is written.
func (p *Pages) Post(ctx context.Context, w io.Writer, slug string) error {
	post, err := p.svc.GetPost(ctx, slug)
	if err != nil {
		return err
	}
	related, err := p.svc.Related(ctx, slug, relatedLimit)
	if err != nil {
		return err
	}
	return p.execute(w, "post", postPage{
		page: page{
			Site:       p.site,
			Title:      post.Title + " | " + p.site.Name,
			Summary:    post.Excerpt,
			LiveReload: p.liveReload,
		},
		Post:     post,
		LongDate: longDate(post.Date),
		Related:  related,
	})
}

// NotFound writes the 404 page.
func (p *Pages) NotFound(w io.Writer) error {
	return p.execute(w, "notfound", page{Site: p.site, Title: "Post Not Found | " + p.site.Name})
}

// execute renders into a buffer so a template error never leaves a
// half-written page.
func (p *Pages) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := p.tmpl[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("web: execute %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
