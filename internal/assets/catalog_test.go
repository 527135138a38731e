package assets

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	full := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestScanAndLookup(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.js", "export default 1;")
	writeFile(t, root, "styles/app.css", "body{}")

	cat := NewCatalog([]string{root}, nil)
	if err := cat.Scan(); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if cat.Len() != 2 {
		t.Errorf("Expected 2 assets, got %d", cat.Len())
	}

	js, ok := cat.Lookup("/main.js")
	if !ok {
		t.Fatal("main.js should be cataloged")
	}
	if js.ContentType != "text/javascript; charset=utf-8" {
		t.Errorf("Unexpected content type: %s", js.ContentType)
	}
	if js.Size != int64(len("export default 1;")) {
		t.Errorf("Unexpected size: %d", js.Size)
	}

	if _, ok := cat.Lookup("styles/app.css"); !ok {
		t.Error("Lookup should normalize paths without a leading slash")
	}
}

func TestFirstRootWins(t *testing.T) {
	primary := t.TempDir()
	fallback := t.TempDir()
	writeFile(t, primary, "index.html", "<h1>primary</h1>")
	writeFile(t, fallback, "index.html", "<h1>fallback</h1>")
	writeFile(t, fallback, "extra.js", "// only here")

	cat := NewCatalog([]string{primary, fallback}, nil)
	if err := cat.Scan(); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	idx, ok := cat.Lookup("/index.html")
	if !ok {
		t.Fatal("index.html should be cataloged")
	}
	data, err := os.ReadFile(idx.FilePath)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "<h1>primary</h1>" {
		t.Error("First root should shadow later roots")
	}

	if _, ok := cat.Lookup("/extra.js"); !ok {
		t.Error("Files unique to later roots should still be cataloged")
	}
}

func TestMissingRootSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "hello")

	cat := NewCatalog([]string{filepath.Join(root, "nope"), root}, nil)
	if err := cat.Scan(); err != nil {
		t.Fatalf("Scan should skip missing roots: %v", err)
	}
	if cat.Len() != 1 {
		t.Errorf("Expected 1 asset, got %d", cat.Len())
	}
}

func TestLookupRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "hello")

	cat := NewCatalog([]string{root}, nil)
	if err := cat.Scan(); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if _, ok := cat.Lookup("/../a.txt"); !ok {
		// Clean collapses the traversal onto the cataloged path.
		t.Error("Cleaned path should resolve to the cataloged entry")
	}
	if _, ok := cat.Lookup("/../../etc/passwd"); ok {
		t.Error("Paths outside the catalog must not resolve")
	}
}
