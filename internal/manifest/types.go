package manifest

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// AtomFamily is the family tag handled by this runtime. Atoms declaring any
// other family are passed through untouched.
const AtomFamily = "swarmakit"

// AtomRef identifies a dynamically loadable component implementation.
type AtomRef struct {
	Family string `json:"family"`
	Role   string `json:"role"`
	Module string `json:"module"`
	Export string `json:"export,omitempty"`
}

// ExportName returns the export selected by the reference, defaulting to
// "default" when none is declared.
func (a AtomRef) ExportName() string {
	if a.Export == "" {
		return "default"
	}
	return a.Export
}

// Tile is one placement unit in a manifest. Only the atom reference is
// interpreted here; every other field is opaque pass-through data kept in
// Extra so round-tripping a manifest loses nothing.
type Tile struct {
	Atom  *AtomRef
	Extra map[string]interface{}
}

// UnmarshalJSON splits the atom reference out of the raw tile object and
// keeps the remaining fields verbatim.
func (t *Tile) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}

	if atomRaw, ok := raw["atom"]; ok {
		encoded, err := sonic.Marshal(atomRaw)
		if err != nil {
			return fmt.Errorf("invalid atom reference: %w", err)
		}
		var ref AtomRef
		if err := sonic.Unmarshal(encoded, &ref); err != nil {
			return fmt.Errorf("invalid atom reference: %w", err)
		}
		t.Atom = &ref
		delete(raw, "atom")
	}

	t.Extra = raw
	return nil
}

// MarshalJSON reassembles the original tile object.
func (t Tile) MarshalJSON() ([]byte, error) {
	raw := make(map[string]interface{}, len(t.Extra)+1)
	for k, v := range t.Extra {
		raw[k] = v
	}
	if t.Atom != nil {
		raw["atom"] = t.Atom
	}
	return sonic.Marshal(raw)
}

// SitePage describes one navigable page in the site section.
type SitePage struct {
	ID    string                   `json:"id"`
	Route string                   `json:"route"`
	Title string                   `json:"title,omitempty"`
	Slots []map[string]interface{} `json:"slots,omitempty"`
}

// SiteNav carries navigation metadata for the site section.
type SiteNav struct {
	BasePath string `json:"base_path,omitempty"`
}

// Site is the optional navigation description of a manifest.
type Site struct {
	Pages      []SitePage `json:"pages,omitempty"`
	ActivePage string     `json:"active_page,omitempty"`
	Navigation *SiteNav   `json:"navigation,omitempty"`
}

// Manifest is the root declarative document. It is immutable once loaded
// into a cache slot.
type Manifest struct {
	Tiles   []Tile                 `json:"tiles"`
	Site    *Site                  `json:"site,omitempty"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
	ETag    string                 `json:"etag,omitempty"`
	Version string                 `json:"version,omitempty"`
}
