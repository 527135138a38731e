package atom

import (
	"context"
	"fmt"
	"sync"
)

// Exports is a plain map-backed module namespace.
type Exports map[string]Component

// Export implements Module.
func (e Exports) Export(name string) (Component, bool) {
	c, ok := e[name]
	return c, ok
}

// StaticHost serves modules registered ahead of time. It backs
// compile-time-bundled builds where every atom module ships inside the
// binary, and doubles as the standard test host.
type StaticHost struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// NewStaticHost creates an empty static host.
func NewStaticHost() *StaticHost {
	return &StaticHost{modules: make(map[string]Module)}
}

// Register binds a module to a specifier. Later registrations for the same
// specifier replace earlier ones.
func (h *StaticHost) Register(specifier string, mod Module) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.modules[specifier] = mod
}

// RegisterExports is a convenience wrapper around Register for map-shaped
// modules.
func (h *StaticHost) RegisterExports(specifier string, exports Exports) {
	h.Register(specifier, exports)
}

// Import implements Host.
func (h *StaticHost) Import(_ context.Context, specifier string) (Module, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	mod, ok := h.modules[specifier]
	if !ok {
		return nil, fmt.Errorf("unknown module %q", specifier)
	}
	return mod, nil
}
