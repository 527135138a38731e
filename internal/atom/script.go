package atom

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/go-resty/resty/v2"
)

// ScriptHost imports atom modules by fetching their source over HTTP and
// evaluating it in an embedded JavaScript runtime. Specifiers are resolved
// against the host's base URL, so manifests can use relative module paths.
// Imported modules are memoized by specifier for the host's lifetime.
type ScriptHost struct {
	client  *resty.Client
	base    *url.URL
	timeout time.Duration

	mu      sync.Mutex
	modules map[string]Module
}

// ScriptHostConfig configures a ScriptHost.
type ScriptHostConfig struct {
	// BaseURL anchors relative module specifiers, typically the manifest URL.
	BaseURL string
	// Client overrides the HTTP client used to fetch module source.
	Client *resty.Client
	// EvalTimeout bounds a single module evaluation. Zero means 10s.
	EvalTimeout time.Duration
}

// NewScriptHost creates a script host. An empty base URL restricts the host
// to absolute specifiers.
func NewScriptHost(cfg ScriptHostConfig) (*ScriptHost, error) {
	var base *url.URL
	if cfg.BaseURL != "" {
		parsed, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid module base URL: %w", err)
		}
		base = parsed
	}

	client := cfg.Client
	if client == nil {
		client = resty.New().SetTimeout(30 * time.Second)
	}

	timeout := cfg.EvalTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &ScriptHost{
		client:  client,
		base:    base,
		timeout: timeout,
		modules: make(map[string]Module),
	}, nil
}

// Import implements Host.
func (h *ScriptHost) Import(ctx context.Context, specifier string) (Module, error) {
	h.mu.Lock()
	if mod, ok := h.modules[specifier]; ok {
		h.mu.Unlock()
		return mod, nil
	}
	h.mu.Unlock()

	source, err := h.fetchSource(ctx, specifier)
	if err != nil {
		return nil, err
	}

	mod, err := h.evaluate(ctx, specifier, source)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	// First import wins if two callers raced on the same specifier.
	if existing, ok := h.modules[specifier]; ok {
		mod = existing
	} else {
		h.modules[specifier] = mod
	}
	h.mu.Unlock()

	return mod, nil
}

func (h *ScriptHost) fetchSource(ctx context.Context, specifier string) (string, error) {
	target := specifier
	if h.base != nil {
		ref, err := url.Parse(specifier)
		if err != nil {
			return "", fmt.Errorf("invalid module specifier %q: %w", specifier, err)
		}
		target = h.base.ResolveReference(ref).String()
	}

	resp, err := h.client.R().SetContext(ctx).Get(target)
	if err != nil {
		return "", fmt.Errorf("failed to fetch module %q: %w", specifier, err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("failed to fetch module %q: %d %s",
			specifier, resp.StatusCode(), http.StatusText(resp.StatusCode()))
	}
	return string(resp.Body()), nil
}

// evaluate runs the module source in a fresh VM with CommonJS-style
// module/exports bindings and collects the resulting namespace.
func (h *ScriptHost) evaluate(ctx context.Context, specifier, source string) (Module, error) {
	vm := goja.New()

	moduleObj := vm.NewObject()
	exportsObj := vm.NewObject()
	if err := moduleObj.Set("exports", exportsObj); err != nil {
		return nil, fmt.Errorf("failed to prepare module scope: %w", err)
	}
	if err := vm.Set("module", moduleObj); err != nil {
		return nil, fmt.Errorf("failed to prepare module scope: %w", err)
	}
	if err := vm.Set("exports", exportsObj); err != nil {
		return nil, fmt.Errorf("failed to prepare module scope: %w", err)
	}

	evalCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		select {
		case <-evalCtx.Done():
			vm.Interrupt("module evaluation interrupted")
		case <-done:
		}
	}()

	_, err := vm.RunScript(specifier, source)
	close(done)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate module %q: %w", specifier, err)
	}

	return newScriptModule(vm, moduleObj.Get("exports")), nil
}

// scriptModule wraps an evaluated module.exports value. Named exports come
// from object keys; "default" falls back to the whole exports value when no
// explicit default binding exists, matching CommonJS interop.
type scriptModule struct {
	exports map[string]Component
	root    Component
}

func newScriptModule(vm *goja.Runtime, exportsVal goja.Value) *scriptModule {
	mod := &scriptModule{exports: make(map[string]Component)}
	if exportsVal == nil || goja.IsUndefined(exportsVal) || goja.IsNull(exportsVal) {
		return mod
	}

	mod.root = exportsVal.Export()
	if obj, ok := exportsVal.(*goja.Object); ok {
		for _, key := range obj.Keys() {
			mod.exports[key] = obj.Get(key).Export()
		}
	}
	return mod
}

// Export implements Module.
func (m *scriptModule) Export(name string) (Component, bool) {
	if c, ok := m.exports[name]; ok {
		return c, true
	}
	if name == "default" && m.root != nil {
		return m.root, true
	}
	return nil, false
}
