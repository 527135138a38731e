package appctx

import (
	"context"
	"errors"
	"testing"

	"github.com/swarmakit/layoutd/internal/events"
	"github.com/swarmakit/layoutd/internal/manifest"
	"github.com/swarmakit/layoutd/internal/reactive"
	"github.com/swarmakit/layoutd/internal/registry"
)

func holders() (*reactive.Ref[*manifest.Manifest], *reactive.Ref[*registry.Registry]) {
	return reactive.NewRef(&manifest.Manifest{ETag: "e"}), reactive.NewRef(&registry.Registry{})
}

func TestAccessorsOnInstalledContext(t *testing.T) {
	m, r := holders()
	c := New(m, r)

	gotM, err := c.Manifest()
	if err != nil || gotM != m {
		t.Errorf("Manifest accessor failed: %v", err)
	}
	gotR, err := c.Components()
	if err != nil || gotR != r {
		t.Errorf("Components accessor failed: %v", err)
	}
}

func TestAccessorsFailOutsideInstalledScope(t *testing.T) {
	var c *Context

	if _, err := c.Manifest(); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("Expected ErrNotInstalled, got %v", err)
	}
	if _, err := c.Components(); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("Expected ErrNotInstalled, got %v", err)
	}
	if _, err := c.Transport(); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("Expected ErrNotInstalled, got %v", err)
	}
}

func TestOmittedCollaboratorsAreAbsent(t *testing.T) {
	m, r := holders()
	c := New(m, r)

	if _, err := c.Transport(); !errors.Is(err, ErrNoTransport) {
		t.Errorf("Expected ErrNoTransport, got %v", err)
	}
	if _, err := c.Events(false); !errors.Is(err, ErrNoEvents) {
		t.Errorf("Expected ErrNoEvents, got %v", err)
	}

	// Optional mode returns the nil sentinel instead of failing.
	bus, err := c.Events(true)
	if err != nil || bus != nil {
		t.Errorf("Optional events should be (nil, nil), got (%v, %v)", bus, err)
	}
}

func TestSuppliedCollaborators(t *testing.T) {
	m, r := holders()
	bus := events.NewBus()
	handle := struct{ name string }{"mux"}
	c := New(m, r, WithTransport(handle), WithEvents(bus))

	gotT, err := c.Transport()
	if err != nil || gotT != handle {
		t.Errorf("Transport accessor failed: %v", err)
	}
	gotB, err := c.Events(false)
	if err != nil || gotB != bus {
		t.Errorf("Events accessor failed: %v", err)
	}
}

func TestAmbientAdapter(t *testing.T) {
	if _, err := FromContext(context.Background()); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("Expected ErrNotInstalled outside installed subtree, got %v", err)
	}

	m, r := holders()
	c := New(m, r)
	ctx := Install(context.Background(), c)

	got, err := FromContext(ctx)
	if err != nil || got != c {
		t.Errorf("FromContext should recover the installed context: %v", err)
	}
}
