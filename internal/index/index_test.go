package index

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/octavio/octavio/internal/apperr"
	"github.com/octavio/octavio/internal/markup"
	"github.com/octavio/octavio/internal/models"
	"github.com/octavio/octavio/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "octavio-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPost(path, slug, date string) *models.Post {
	at, _ := time.Parse(models.DateLayout, date)
	return &models.Post{
		ID:          "id-" + slug,
		Title:       "Title " + slug,
		Content:     "Body of " + slug,
		Date:        date,
		Category:    "AI",
		ReadTime:    "1 min read",
		Slug:        slug,
		Path:        path,
		Checksum:    "cs-" + slug,
		PublishedAt: at,
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM posts`).Scan(&count); err != nil {
		t.Fatalf("posts table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertPost(testPost("hello.md", "hello", "2025-02-03")); err != nil {
		t.Fatalf("UpsertPost: %v", err)
	}
	cs, err := db.GetChecksum("hello.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "cs-hello" {
		t.Errorf("checksum = %q, want %q", cs, "cs-hello")
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPost(testPost("up.md", "old-slug", "2025-02-03"))
	p := testPost("up.md", "new-slug", "2025-02-04")
	if err := db.UpsertPost(p); err != nil {
		t.Fatalf("UpsertPost: %v", err)
	}

	ctx := context.Background()
	if _, err := db.PostBySlug(ctx, "old-slug"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("old slug should be gone, got %v", err)
	}
	got, err := db.PostBySlug(ctx, "new-slug")
	if err != nil {
		t.Fatalf("PostBySlug: %v", err)
	}
	if got.Date != "2025-02-04" || got.PublishedAt.IsZero() {
		t.Errorf("post = %+v", got)
	}
}

func TestUpsertSlugConflict(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPost(testPost("a.md", "same", "2025-02-03"))
	err := db.UpsertPost(testPost("b.md", "same", "2025-02-04"))
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestDeletePath(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPost(testPost("del.md", "del", "2025-02-03"))

	if err := db.DeletePath("del.md"); err != nil {
		t.Fatalf("DeletePath: %v", err)
	}
	cs, _ := db.GetChecksum("del.md")
	if cs != "" {
		t.Errorf("deleted post still has checksum %q", cs)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestPosts_NewestFirst(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPost(testPost("a.md", "a", "2025-02-03"))
	_ = db.UpsertPost(testPost("b.md", "b", "2025-02-05"))
	_ = db.UpsertPost(testPost("c.md", "c", "2025-02-04"))

	posts, err := db.Posts(context.Background())
	if err != nil {
		t.Fatalf("Posts: %v", err)
	}
	if len(posts) != 3 || posts[0].Slug != "b" || posts[1].Slug != "c" || posts[2].Slug != "a" {
		t.Errorf("order = %+v", posts)
	}
}

func TestPostBySlug_NotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.PostBySlug(context.Background(), "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	p := testPost("s.md", "search-me", "2025-02-03")
	p.Content = "uniqueword appears here"
	_ = db.UpsertPost(p)

	results, err := db.Search(context.Background(), "uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Slug != "search-me" {
		t.Errorf("search results = %+v, want 1 hit for search-me", results)
	}
}

func TestSync(t *testing.T) {
	db := testDB(t)
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_ = store.Write("one.md", []byte("---\ntitle: \"One\"\ndate: \"2025-02-03\"\n---\nFirst."))
	_ = store.Write("two.md", []byte("---\ntitle: \"Two\"\ndate: \"2025-02-04\"\n---\nSecond."))
	_ = store.Write("bad.md", []byte("no frontmatter"))
	_ = db.UpsertPost(testPost("gone.md", "gone", "2025-01-01"))

	res, err := Sync(context.Background(), db, store, quietLogger())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res != (SyncResult{Indexed: 2, Removed: 1, Skipped: 1}) {
		t.Errorf("result = %+v", res)
	}

	again, err := Sync(context.Background(), db, store, quietLogger())
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if again.Indexed != 0 || again.Unchanged != 2 {
		t.Errorf("second pass = %+v, want only unchanged files", again)
	}

	posts, _ := db.Posts(context.Background())
	if len(posts) != 2 || posts[0].Slug != "two" || posts[1].Slug != "one" {
		t.Fatalf("posts after sync = %+v", posts)
	}
	if cs, _ := db.GetChecksum("gone.md"); cs != "" {
		t.Error("stale entry not removed")
	}
}

func TestOpen_RebuildsOnSchemaChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idx.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = db.UpsertPost(testPost("a.md", "a", "2025-02-03"))
	if _, err := db.conn.Exec(`PRAGMA user_version = 1`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	posts, _ := db.Posts(context.Background())
	if len(posts) != 0 {
		t.Errorf("stale rows survived schema change: %d", len(posts))
	}
	var v int
	_ = db.conn.QueryRow(`PRAGMA user_version`).Scan(&v)
	if v != schemaVersion {
		t.Errorf("user_version = %d", v)
	}
}

func TestOpen_KeepsRowsOnSameVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idx.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = db.UpsertPost(testPost("a.md", "a", "2025-02-03"))
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	if cs, _ := db.GetChecksum("a.md"); cs != "cs-a" {
		t.Errorf("checksum after reopen = %q", cs)
	}
}

func TestSync_ExcerptUsesProfile(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "idx.db"), WithProfile(markup.ProfileBasic))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_ = store.Write("fence.md", []byte("---\ntitle: \"Fence\"\ndate: \"2025-02-03\"\n---\n```\nls\n```\nAfter.\n"))

	if _, err := Sync(context.Background(), db, store, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	p, err := db.PostBySlug(context.Background(), "fence")
	if err != nil {
		t.Fatalf("PostBySlug: %v", err)
	}
	if p.Excerpt == "After." {
		t.Errorf("excerpt %q derived with the full profile", p.Excerpt)
	}
}
