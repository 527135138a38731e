// Package atom resolves manifest atom references into loaded component
// artifacts. Resolution is an explicit capability interface: the remote
// script host is one strategy, a static in-process host is another, and
// tests substitute their own.
package atom

import (
	"context"
	"fmt"

	"github.com/swarmakit/layoutd/internal/manifest"
)

// Component is the resolved artifact for an atom. The runtime treats it as
// opaque and immutable once resolved.
type Component = interface{}

// Resolver turns a single atom reference into a component.
type Resolver interface {
	Resolve(ctx context.Context, ref manifest.AtomRef) (Component, error)
}

// Module is a loaded module namespace with named exports.
type Module interface {
	Export(name string) (Component, bool)
}

// Host imports a module by specifier. It is the sole extension point needed
// to substitute ahead-of-time bundling, a different module source, or a test
// double; the resolver assumes nothing about where modules physically live.
type Host interface {
	Import(ctx context.Context, specifier string) (Module, error)
}

// ImportResolver is the default resolution strategy: import the module named
// by the reference, then select its declared export.
type ImportResolver struct {
	host Host
}

// NewImportResolver creates a resolver backed by the given module host.
func NewImportResolver(host Host) *ImportResolver {
	return &ImportResolver{host: host}
}

// Resolve imports ref.Module and selects ref.Export (or "default").
func (r *ImportResolver) Resolve(ctx context.Context, ref manifest.AtomRef) (Component, error) {
	if ref.Module == "" {
		return nil, fmt.Errorf("atom %q declares no module specifier", ref.Role)
	}

	mod, err := r.host.Import(ctx, ref.Module)
	if err != nil {
		return nil, fmt.Errorf("failed to import module %q for atom %q: %w", ref.Module, ref.Role, err)
	}

	name := ref.ExportName()
	component, ok := mod.Export(name)
	if !ok {
		return nil, fmt.Errorf("module %q has no export %q", ref.Module, name)
	}
	return component, nil
}

// Func adapts a plain function to the Resolver interface.
type Func func(ctx context.Context, ref manifest.AtomRef) (Component, error)

// Resolve implements Resolver.
func (f Func) Resolve(ctx context.Context, ref manifest.AtomRef) (Component, error) {
	return f(ctx, ref)
}
