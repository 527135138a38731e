// Package store holds the manifests the server publishes, keyed by id.
package store

import (
	"encoding/hex"
	"sort"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/swarmakit/layoutd/internal/manifest"
)

// Store is an in-memory manifest registry. Documents are immutable once
// inserted; replacing an id swaps the whole document.
type Store struct {
	mu        sync.RWMutex
	manifests map[string]*manifest.Manifest
}

// New creates an empty store.
func New() *Store {
	return &Store{manifests: make(map[string]*manifest.Manifest)}
}

// Put inserts or replaces the manifest stored under id. Manifests without an
// ETag get one derived from their canonical JSON encoding.
func (s *Store) Put(id string, m *manifest.Manifest) error {
	if m.ETag == "" {
		etag, err := Fingerprint(m)
		if err != nil {
			return err
		}
		m.ETag = etag
	}

	s.mu.Lock()
	s.manifests[id] = m
	s.mu.Unlock()
	return nil
}

// Get returns the manifest stored under id.
func (s *Store) Get(id string) (*manifest.Manifest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.manifests[id]
	return m, ok
}

// IDs returns the stored manifest ids in sorted order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.manifests))
	for id := range s.manifests {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of stored manifests.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.manifests)
}

// Fingerprint derives a content hash for m from its canonical JSON encoding.
func Fingerprint(m *manifest.Manifest) (string, error) {
	data, err := manifest.EncodeJSON(m)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:16]), nil
}
