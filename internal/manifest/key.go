package manifest

import "fmt"

// DefaultKey is the cache key used when a manifest carries no revision
// marker, etag, or version.
const DefaultKey = "default"

// DeriveKey computes the cache key for a manifest. Priority order: explicit
// override, the revision marker nested at meta.atoms.revision, the manifest
// etag, the manifest version, then DefaultKey. Pure function; stable for
// identical inputs.
func DeriveKey(m *Manifest, override string) string {
	if override != "" {
		return override
	}
	if m == nil {
		return DefaultKey
	}
	if rev := atomsRevision(m.Meta); rev != "" {
		return rev
	}
	if m.ETag != "" {
		return m.ETag
	}
	if m.Version != "" {
		return m.Version
	}
	return DefaultKey
}

// atomsRevision digs out meta.atoms.revision, honoring it only when
// meta.atoms is a genuine keyed structure.
func atomsRevision(meta map[string]interface{}) string {
	if meta == nil {
		return ""
	}
	atoms, ok := meta["atoms"].(map[string]interface{})
	if !ok {
		return ""
	}
	rev, ok := atoms["revision"]
	if !ok || rev == nil {
		return ""
	}
	switch v := rev.(type) {
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
