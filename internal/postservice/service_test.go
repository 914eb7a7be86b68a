package postservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/octavio/octavio/internal/apperr"
	"github.com/octavio/octavio/internal/content"
	"github.com/octavio/octavio/internal/index"
	"github.com/octavio/octavio/internal/markup"
	"github.com/octavio/octavio/internal/testutil"
)

func testService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	_, store := testutil.TestContent(t)
	testutil.SeedPosts(t, store)
	catalog, err := content.LoadCatalog(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	return New(catalog, opts...)
}

func TestListPosts(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	all, err := svc.ListPosts(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].Date != "2025-02-05" {
		t.Errorf("ListPosts = %+v", all)
	}

	ai, _ := svc.ListPosts(ctx, "ai")
	if len(ai) != 2 {
		t.Errorf("ListPosts(ai) = %d posts, want 2", len(ai))
	}
}

func TestGetPost_RendersBody(t *testing.T) {
	svc := testService(t)
	d, err := svc.GetPost(context.Background(), "giving-tools-to-a-language-model")
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(d.Blocks))
	}
	if _, ok := d.Blocks[1].(markup.CodeBlock); !ok {
		t.Errorf("second block = %T, want CodeBlock", d.Blocks[1])
	}
	html := string(d.HTML)
	if !strings.Contains(html, "<em>manners</em>") || !strings.Contains(html, `class="language-go"`) {
		t.Errorf("html = %s", html)
	}
}

func TestGetPost_BasicProfile(t *testing.T) {
	svc := testService(t, WithProfile(markup.ProfileBasic))
	d, err := svc.GetPost(context.Background(), "giving-tools-to-a-language-model")
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range d.Blocks {
		if _, ok := b.(markup.CodeBlock); ok {
			t.Fatal("basic profile must not produce code blocks")
		}
	}
}

func TestGetPost_NotFound(t *testing.T) {
	svc := testService(t)
	if _, err := svc.GetPost(context.Background(), "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRelated(t *testing.T) {
	svc := testService(t)
	got, err := svc.Related(context.Background(), "eight-minds-are-better-than-one", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Slug != "giving-tools-to-a-language-model" {
		t.Errorf("Related = %+v", got)
	}
}

func TestSearch_Fallback(t *testing.T) {
	svc := testService(t)
	got, err := svc.Search(context.Background(), "PLAYWRIGHT", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Slug != "how-we-taught-a-browser-to-clone-designs" {
		t.Errorf("Search = %+v", got)
	}
}

type stubSearcher struct{ query string }

func (s *stubSearcher) Search(_ context.Context, q string, _ int) ([]index.SearchResult, error) {
	s.query = q
	return []index.SearchResult{{Slug: "from-index"}}, nil
}

func TestSearch_UsesSearcher(t *testing.T) {
	stub := &stubSearcher{}
	svc := testService(t, WithSearcher(stub))
	got, _ := svc.Search(context.Background(), "x", 0)
	if stub.query != "x" || len(got) != 1 || got[0].Slug != "from-index" {
		t.Errorf("Search = %+v (query %q)", got, stub.query)
	}
}

func TestRender(t *testing.T) {
	svc := testService(t)
	r, err := svc.Render("## Hi\n- **a**", markup.ProfileFull)
	if err != nil {
		t.Fatal(err)
	}
	if string(r.HTML) != "<h2>Hi</h2>\n<ul>\n<li><strong>a</strong></li>\n</ul>\n" {
		t.Errorf("html = %s", r.HTML)
	}
	if len(r.Blocks) != 2 {
		t.Errorf("blocks = %d", len(r.Blocks))
	}
}
