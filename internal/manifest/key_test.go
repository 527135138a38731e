package manifest

import "testing"

func TestDeriveKeyOverride(t *testing.T) {
	m := &Manifest{ETag: "etag-1", Version: "1.0"}
	if key := DeriveKey(m, "explicit"); key != "explicit" {
		t.Errorf("Expected explicit override, got %q", key)
	}
}

func TestDeriveKeyRevisionMarker(t *testing.T) {
	m := &Manifest{
		Meta: map[string]interface{}{
			"atoms": map[string]interface{}{"revision": "rev-42"},
		},
		ETag:    "etag-1",
		Version: "1.0",
	}
	if key := DeriveKey(m, ""); key != "rev-42" {
		t.Errorf("Expected revision marker, got %q", key)
	}
}

func TestDeriveKeyRevisionRequiresKeyedAtoms(t *testing.T) {
	// meta.atoms that is not a keyed structure must be ignored
	m := &Manifest{
		Meta: map[string]interface{}{"atoms": "rev-42"},
		ETag: "etag-1",
	}
	if key := DeriveKey(m, ""); key != "etag-1" {
		t.Errorf("Expected etag fallback, got %q", key)
	}
}

func TestDeriveKeyNumericRevision(t *testing.T) {
	m := &Manifest{
		Meta: map[string]interface{}{
			"atoms": map[string]interface{}{"revision": float64(7)},
		},
	}
	if key := DeriveKey(m, ""); key != "7" {
		t.Errorf("Expected stringified revision, got %q", key)
	}
}

func TestDeriveKeyFallbackOrder(t *testing.T) {
	if key := DeriveKey(&Manifest{ETag: "e", Version: "v"}, ""); key != "e" {
		t.Errorf("Expected etag before version, got %q", key)
	}
	if key := DeriveKey(&Manifest{Version: "v"}, ""); key != "v" {
		t.Errorf("Expected version, got %q", key)
	}
	if key := DeriveKey(&Manifest{}, ""); key != DefaultKey {
		t.Errorf("Expected default key, got %q", key)
	}
	if key := DeriveKey(nil, ""); key != DefaultKey {
		t.Errorf("Expected default key for nil manifest, got %q", key)
	}
}

func TestDeriveKeyStable(t *testing.T) {
	m := &Manifest{ETag: "stable"}
	if DeriveKey(m, "") != DeriveKey(m, "") {
		t.Error("DeriveKey must be stable for identical inputs")
	}
}
