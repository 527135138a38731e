// Package appctx is the dependency-injection surface of a booted app: one
// read-only context object exposing the manifest, the component registry,
// and optional collaborators to everything downstream. The context is passed
// by reference through constructors; ambient lookup exists only as the
// context.Context adapter in this package.
package appctx

import (
	"errors"

	"github.com/swarmakit/layoutd/internal/events"
	"github.com/swarmakit/layoutd/internal/manifest"
	"github.com/swarmakit/layoutd/internal/reactive"
	"github.com/swarmakit/layoutd/internal/registry"
)

// Injection slot read errors. Each accessor fails fast with one of these
// when the slot was never installed.
var (
	ErrNotInstalled = errors.New("app context read outside an installed scope")
	ErrNoTransport  = errors.New("no realtime transport was installed in this app context")
	ErrNoEvents     = errors.New("no event bus was installed in this app context")
)

// Context broadcasts a booted app's collaborators to its subtree. It never
// mutates what it holds; the reactive holders are the only replacement seam.
type Context struct {
	manifest   *reactive.Ref[*manifest.Manifest]
	components *reactive.Ref[*registry.Registry]
	transport  interface{}
	events     *events.Bus
}

// Option installs an optional collaborator.
type Option func(*Context)

// WithTransport installs the realtime transport handle. The context treats
// the handle as opaque.
func WithTransport(handle interface{}) Option {
	return func(c *Context) { c.transport = handle }
}

// WithEvents installs the event bus.
func WithEvents(bus *events.Bus) Option {
	return func(c *Context) { c.events = bus }
}

// New creates an installed context over the given holders. Collaborators not
// supplied through options stay absent: their accessors fail rather than
// hand out placeholders downstream code could mistake for "ready but empty".
func New(m *reactive.Ref[*manifest.Manifest], components *reactive.Ref[*registry.Registry], opts ...Option) *Context {
	c := &Context{manifest: m, components: components}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Manifest returns the manifest holder.
func (c *Context) Manifest() (*reactive.Ref[*manifest.Manifest], error) {
	if c == nil || c.manifest == nil {
		return nil, ErrNotInstalled
	}
	return c.manifest, nil
}

// Components returns the registry holder.
func (c *Context) Components() (*reactive.Ref[*registry.Registry], error) {
	if c == nil || c.components == nil {
		return nil, ErrNotInstalled
	}
	return c.components, nil
}

// Transport returns the installed realtime transport handle.
func (c *Context) Transport() (interface{}, error) {
	if c == nil {
		return nil, ErrNotInstalled
	}
	if c.transport == nil {
		return nil, ErrNoTransport
	}
	return c.transport, nil
}

// Events returns the installed event bus. In optional mode an absent bus
// yields (nil, nil) so callers can probe without handling an error; callers
// must pick one behavior explicitly.
func (c *Context) Events(optional bool) (*events.Bus, error) {
	if c == nil {
		if optional {
			return nil, nil
		}
		return nil, ErrNotInstalled
	}
	if c.events == nil {
		if optional {
			return nil, nil
		}
		return nil, ErrNoEvents
	}
	return c.events, nil
}
