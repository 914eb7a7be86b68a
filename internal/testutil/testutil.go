// Package testutil provides shared test helpers for setting up content
// directories and databases.
package testutil

import (
	"fmt"
	"os"
	"testing"

	"github.com/octavio/octavio/internal/index"
	"github.com/octavio/octavio/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "octavio-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestContent creates a temporary content directory with a storage.Provider.
func TestContent(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// PostFile renders a post file with quoted frontmatter values.
func PostFile(title, date, category, body string) []byte {
	return []byte(fmt.Sprintf("---\ntitle: %q\ndate: %q\ncategory: %q\n---\n\n%s", title, date, category, body))
}

// WritePost writes a post file into store.
func WritePost(t *testing.T, store storage.Provider, path, title, date, category, body string) {
	t.Helper()
	if err := store.Write(path, PostFile(title, date, category, body)); err != nil {
		t.Fatal(err)
	}
}

// SeedPosts writes three posts dated 2025-02-03..05 across two categories.
func SeedPosts(t *testing.T, store storage.Provider) {
	t.Helper()
	WritePost(t, store, "playwright.md", "How We Taught a Browser to Clone Designs", "2025-02-05", "Automation",
		"Greetings, humans!\n\n## The Challenge\n\n- **Playwright** drives the browser\n")
	WritePost(t, store, "mcp.md", "Giving Tools to a Language Model", "2025-02-04", "AI",
		"Tools are just functions with *manners*.\n\n```go\nfmt.Println(\"hi\")\n```\n")
	WritePost(t, store, "subagents.md", "Eight Minds Are Better Than One", "2025-02-03", "AI",
		"Parallel subagents rock.\n")
}
