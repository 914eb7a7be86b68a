package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/octavio/octavio/internal/content"
	"github.com/octavio/octavio/internal/postservice"
	"github.com/octavio/octavio/internal/testutil"
)

func testSite() *Site {
	return &Site{
		Name:  "O.C.T.A.V.I.O.",
		Title: "O.C.T.A.V.I.O. - Cyber Octopus AI Assistant",
		Hero:  Hero{Tagline: "Cyber Octopus AI Assistant"},
		Blog:  Section{Heading: "Latest from the Deep"},
		About: About{Heading: "About O.C.T.A.V.I.O.", Body: "**O**rganized **C**ybernetic\n\nI'm a <script>cyber</script> octopus.", Skills: []string{"Automation"}},
		Projects: Projects{Items: []Project{
			{Title: "OctoCLI", Status: "Beta", Tags: []string{"CLI"}},
		}},
		Stats: Stats{StartDate: "2026-01-22", Cores: 4, MemoryGB: 4, Model: "zai/glm-4.7"},
	}
}

func testServer(t *testing.T) (http.Handler, string) {
	t.Helper()
	_, store := testutil.TestContent(t)
	testutil.SeedPosts(t, store)
	catalog, err := content.LoadCatalog(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	clock := func() time.Time { return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC) }
	pages, err := NewPages(testSite(), postservice.New(catalog), WithClock(clock))
	if err != nil {
		t.Fatalf("NewPages: %v", err)
	}

	assetDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(assetDir, "site.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := chi.NewRouter()
	NewHandler(pages, NewAssetHandler(assetDir)).Mount(r)
	return r, assetDir
}

func fetch(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHome(t *testing.T) {
	h, _ := testServer(t)
	w := fetch(t, h, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()

	first := strings.Index(body, "How We Taught a Browser to Clone Designs")
	last := strings.Index(body, "Eight Minds Are Better Than One")
	if first < 0 || last < 0 || first > last {
		t.Error("blog cards missing or not newest first")
	}
	if !strings.Contains(body, "February 5, 2025") {
		t.Error("card date not in long form")
	}
	if !strings.Contains(body, "<strong>O</strong>rganized") {
		t.Error("about prose not rendered as Markdown")
	}
	if strings.Contains(body, "<script>cyber</script>") {
		t.Error("raw HTML in about prose must not pass through")
	}
	if !strings.Contains(body, `<span class="stat-value">10</span>`) {
		t.Error("days active should be 10 with the fixed clock")
	}
	if !strings.Contains(body, "status-beta") {
		t.Error("project status class missing")
	}
}

func TestPost(t *testing.T) {
	h, _ := testServer(t)
	w := fetch(t, h, "/blog/giving-tools-to-a-language-model")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<title>Giving Tools to a Language Model | O.C.T.A.V.I.O.</title>") {
		t.Error("page title wrong")
	}
	if !strings.Contains(body, "February 4, 2025") {
		t.Error("long date missing")
	}
	if !strings.Contains(body, "<em>manners</em>") || !strings.Contains(body, `<code class="language-go">`) {
		t.Error("post body not rendered")
	}
	if !strings.Contains(body, "Eight Minds Are Better Than One") {
		t.Error("related post missing")
	}
	if strings.Contains(body, "EventSource") {
		t.Error("live reload script should be off by default")
	}
}

func TestPost_TrailingSlash(t *testing.T) {
	h, _ := testServer(t)
	if w := fetch(t, h, "/blog/giving-tools-to-a-language-model/"); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestPost_NotFound(t *testing.T) {
	h, _ := testServer(t)
	w := fetch(t, h, "/blog/nope")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Lost in the Digital Depths") {
		t.Error("404 page not rendered")
	}
}

func TestUnknownRoute(t *testing.T) {
	h, _ := testServer(t)
	w := fetch(t, h, "/nowhere")
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "Lost in the Digital Depths") {
		t.Errorf("status = %d", w.Code)
	}
}

func TestAssets(t *testing.T) {
	h, _ := testServer(t)
	if w := fetch(t, h, "/assets/site.css"); w.Code != http.StatusOK || w.Body.String() != "body{}" {
		t.Errorf("asset status = %d, body = %q", w.Code, w.Body.String())
	}
	if w := fetch(t, h, "/assets/missing.css"); w.Code != http.StatusNotFound {
		t.Errorf("missing asset = %d, want 404", w.Code)
	}
	if w := fetch(t, h, "/assets/..%2Fsecret"); w.Code != http.StatusBadRequest {
		t.Errorf("traversal = %d, want 400", w.Code)
	}
}

func TestLiveReload(t *testing.T) {
	_, store := testutil.TestContent(t)
	testutil.SeedPosts(t, store)
	catalog, _ := content.LoadCatalog(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	pages, err := NewPages(testSite(), postservice.New(catalog), WithLiveReload(true))
	if err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	if err := pages.Post(t.Context(), &sb, "eight-minds-are-better-than-one"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), `addEventListener("site.updated"`) {
		t.Error("live reload script missing")
	}
}

func TestLongDate(t *testing.T) {
	if got := longDate("2025-02-05"); got != "February 5, 2025" {
		t.Errorf("longDate = %q", got)
	}
	if got := longDate("soon"); got != "soon" {
		t.Errorf("longDate(bad) = %q", got)
	}
}

func TestDaysActive(t *testing.T) {
	s := Stats{StartDate: "2026-01-22"}
	if got := s.DaysActive(time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC)); got != 0 {
		t.Errorf("before start = %d, want 0", got)
	}
	if got := s.DaysActive(time.Date(2026, 1, 25, 6, 0, 0, 0, time.UTC)); got != 3 {
		t.Errorf("DaysActive = %d, want 3", got)
	}
}

func TestLoadSite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	yml := "name: O.C.T.A.V.I.O.\ntitle: Home\nstats:\n  start_date: \"2026-01-22\"\n  cores: 4\nprojects:\n  heading: Projects\n  items:\n    - title: OctoCLI\n      status: Beta\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadSite(path)
	if err != nil {
		t.Fatalf("LoadSite: %v", err)
	}
	if s.Projects.Heading != "Projects" || len(s.Projects.Items) != 1 || s.Stats.Cores != 4 {
		t.Errorf("site = %+v", s)
	}
}

func TestLoadSite_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	_ = os.WriteFile(path, []byte("name: X\ntitle: Y\nstats:\n  start_date: yesterday\n"), 0o644)
	if _, err := LoadSite(path); err == nil {
		t.Fatal("expected validation error for bad start_date")
	}
	_ = os.WriteFile(path, []byte("name: X\ntitle: Y\nstats:\n  start_date: \"2026-01-22\"\nprojects:\n  items:\n    - title: P\n      status: Abandoned\n"), 0o644)
	if _, err := LoadSite(path); err == nil {
		t.Fatal("expected validation error for unknown status")
	}
}
