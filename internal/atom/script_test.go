package atom

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newModuleServer(t *testing.T, modules map[string]string, hits *int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt64(hits, 1)
		}
		src, ok := modules[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/javascript")
		w.Write([]byte(src))
	}))
}

func TestScriptHostNamedExports(t *testing.T) {
	srv := newModuleServer(t, map[string]string{
		"/atoms/Btn.js": `
			exports.Button = { tag: "button", variant: "primary" };
			exports.label = "Click me";
		`,
	}, nil)
	defer srv.Close()

	host, err := NewScriptHost(ScriptHostConfig{BaseURL: srv.URL + "/manifest.json"})
	if err != nil {
		t.Fatalf("NewScriptHost failed: %v", err)
	}

	mod, err := host.Import(context.Background(), "./atoms/Btn.js")
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	button, ok := mod.Export("Button")
	if !ok {
		t.Fatal("Expected Button export")
	}
	fields, ok := button.(map[string]interface{})
	if !ok || fields["tag"] != "button" {
		t.Errorf("Unexpected export value: %v", button)
	}

	if _, ok := mod.Export("missing"); ok {
		t.Error("Unknown export should not resolve")
	}
}

func TestScriptHostDefaultExportFallback(t *testing.T) {
	srv := newModuleServer(t, map[string]string{
		"/Card.js": `module.exports = { tag: "card" };`,
	}, nil)
	defer srv.Close()

	host, err := NewScriptHost(ScriptHostConfig{BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("NewScriptHost failed: %v", err)
	}

	mod, err := host.Import(context.Background(), "./Card.js")
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	card, ok := mod.Export("default")
	if !ok {
		t.Fatal("default should fall back to module.exports")
	}
	if fields, ok := card.(map[string]interface{}); !ok || fields["tag"] != "card" {
		t.Errorf("Unexpected default export: %v", card)
	}
}

func TestScriptHostMemoizesModules(t *testing.T) {
	var hits int64
	srv := newModuleServer(t, map[string]string{
		"/Btn.js": `exports.Button = 1;`,
	}, &hits)
	defer srv.Close()

	host, err := NewScriptHost(ScriptHostConfig{BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("NewScriptHost failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := host.Import(context.Background(), "./Btn.js"); err != nil {
			t.Fatalf("Import failed: %v", err)
		}
	}
	if got := atomic.LoadInt64(&hits); got != 1 {
		t.Errorf("Expected 1 fetch for memoized module, got %d", got)
	}
}

func TestScriptHostImportError(t *testing.T) {
	srv := newModuleServer(t, nil, nil)
	defer srv.Close()

	host, err := NewScriptHost(ScriptHostConfig{BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("NewScriptHost failed: %v", err)
	}

	if _, err := host.Import(context.Background(), "./Nope.js"); err == nil {
		t.Fatal("Expected error for missing module source")
	}
}

func TestScriptHostEvaluationError(t *testing.T) {
	srv := newModuleServer(t, map[string]string{
		"/Broken.js": `throw new Error("boom");`,
	}, nil)
	defer srv.Close()

	host, err := NewScriptHost(ScriptHostConfig{BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("NewScriptHost failed: %v", err)
	}

	if _, err := host.Import(context.Background(), "./Broken.js"); err == nil {
		t.Fatal("Expected evaluation error")
	}
}
