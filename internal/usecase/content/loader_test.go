package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeSource(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileLoader_TitleFromHeading(t *testing.T) {
	path := writeSource(t, "notes.md", "# On Distributed Clocks\n\nBody text here.")

	doc, err := NewFileLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Title != "On Distributed Clocks" {
		t.Fatalf("unexpected title %q", doc.Title)
	}
	if doc.Metadata["source"] != path {
		t.Fatalf("unexpected metadata %v", doc.Metadata)
	}
}

func TestFileLoader_TitleFromFilename(t *testing.T) {
	path := writeSource(t, "vector-clocks.md", "Plain text with no heading.")

	doc, err := NewFileLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Title != "vector-clocks" {
		t.Fatalf("unexpected title %q", doc.Title)
	}
}

func TestFileLoader_MissingFile(t *testing.T) {
	_, err := NewFileLoader().Load(context.Background(), "/nonexistent/file.md")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFileLoader_EmptyFile(t *testing.T) {
	path := writeSource(t, "empty.md", "   \n  ")

	_, err := NewFileLoader().Load(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for empty file")
	}
}
