// Package registry holds the resolved mapping from atom role to loaded
// component for one manifest.
package registry

import (
	"context"

	"github.com/swarmakit/layoutd/internal/atom"
	"github.com/swarmakit/layoutd/internal/manifest"
)

// Entry pairs a resolved component with the atom reference that produced it.
type Entry struct {
	Component atom.Component
	Atom      manifest.AtomRef
}

// Registry maps atom roles to resolved entries. It is built once per
// manifest and read-only afterwards, so no locking is needed.
type Registry struct {
	entries map[string]Entry
	roles   []string
}

// Build resolves every recognized atom in manifest tile order. Atoms of a
// foreign family are skipped; the first atom seen for a role wins and later
// duplicates are ignored. Any resolution failure aborts the whole build.
func Build(ctx context.Context, m *manifest.Manifest, resolver atom.Resolver) (*Registry, error) {
	r := &Registry{entries: make(map[string]Entry)}

	for _, tile := range m.Tiles {
		ref := tile.Atom
		if ref == nil || ref.Family != manifest.AtomFamily {
			continue
		}
		if _, seen := r.entries[ref.Role]; seen {
			continue
		}

		component, err := resolver.Resolve(ctx, *ref)
		if err != nil {
			return nil, err
		}

		r.entries[ref.Role] = Entry{Component: component, Atom: *ref}
		r.roles = append(r.roles, ref.Role)
	}

	return r, nil
}

// Get returns the entry registered for role.
func (r *Registry) Get(role string) (Entry, bool) {
	e, ok := r.entries[role]
	return e, ok
}

// Roles returns the registered roles in resolution order.
func (r *Registry) Roles() []string {
	out := make([]string, len(r.roles))
	copy(out, r.roles)
	return out
}

// Len reports the number of registered entries.
func (r *Registry) Len() int {
	return len(r.entries)
}
