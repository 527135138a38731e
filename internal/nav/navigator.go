// Package nav projects a manifest's site section into navigation state. The
// projection is recomputed wholesale whenever the observed manifest holder
// is replaced; it carries no state of its own beyond the active page id.
package nav

import (
	"sync"

	"github.com/swarmakit/layoutd/internal/manifest"
	"github.com/swarmakit/layoutd/internal/reactive"
)

// Page is one normalized navigable page.
type Page struct {
	ID    string
	Route string
	Title string
	Slots []map[string]interface{}
}

// State is an immutable navigation snapshot.
type State struct {
	Pages        []Page
	ActivePageID string
	BasePath     string
}

// Navigator tracks navigation state for one manifest source. Create one per
// consuming scope and Close it when the scope tears down.
type Navigator struct {
	mu     sync.RWMutex
	state  State
	cancel func()
}

// New subscribes to the manifest holder and keeps the projection current.
func New(source *reactive.Ref[*manifest.Manifest]) *Navigator {
	n := &Navigator{}
	n.cancel = source.Watch(func(m *manifest.Manifest) {
		n.mu.Lock()
		n.state = project(m)
		n.mu.Unlock()
	})
	return n
}

// NewStatic builds a navigator over a fixed manifest value.
func NewStatic(m *manifest.Manifest) *Navigator {
	n := &Navigator{state: project(m)}
	n.cancel = func() {}
	return n
}

// project normalizes the site section. A manifest without one yields an
// empty page list and no active page, not an error.
func project(m *manifest.Manifest) State {
	if m == nil || m.Site == nil {
		return State{}
	}

	site := m.Site
	pages := make([]Page, 0, len(site.Pages))
	for _, p := range site.Pages {
		route := p.Route
		if route == "" {
			route = "/"
		}
		pages = append(pages, Page{ID: p.ID, Route: route, Title: p.Title, Slots: p.Slots})
	}

	basePath := ""
	if site.Navigation != nil {
		basePath = site.Navigation.BasePath
	}

	return State{Pages: pages, ActivePageID: site.ActivePage, BasePath: basePath}
}

// Snapshot returns the current navigation state.
func (n *Navigator) Snapshot() State {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// Pages returns the current normalized page list.
func (n *Navigator) Pages() []Page {
	return n.Snapshot().Pages
}

// ActivePageID returns the current active page id.
func (n *Navigator) ActivePageID() string {
	return n.Snapshot().ActivePageID
}

// BasePath returns the navigation base path.
func (n *Navigator) BasePath() string {
	return n.Snapshot().BasePath
}

// ActivePage looks up the page matching the active page id. It returns nil
// when no page matches.
func (n *Navigator) ActivePage() *Page {
	s := n.Snapshot()
	for i := range s.Pages {
		if s.Pages[i].ID == s.ActivePageID {
			page := s.Pages[i]
			return &page
		}
	}
	return nil
}

// Navigate sets the active page to pageID and returns the target route. An
// unknown id leaves state unchanged and reports ok=false. No URL transition
// happens here; that belongs to the calling shell.
func (n *Navigator) Navigate(pageID string) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, p := range n.state.Pages {
		if p.ID == pageID {
			n.state.ActivePageID = p.ID
			return p.Route, true
		}
	}
	return "", false
}

// Close cancels the manifest subscription.
func (n *Navigator) Close() {
	n.cancel()
}
