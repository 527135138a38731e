// Package assets maintains a catalog of static files served alongside
// manifests. Multiple roots overlay each other; the first root to provide a
// relative path wins, so a build output directory can shadow fallback files.
package assets

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// Asset describes one catalog entry.
type Asset struct {
	// FilePath is the absolute path on disk.
	FilePath string
	// ContentType is the MIME type served with the file.
	ContentType string
	// Size is the file size in bytes at scan time.
	Size int64
}

// Catalog indexes files under a set of root directories by URL path.
type Catalog struct {
	roots  []string
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[string]Asset
}

// NewCatalog creates a catalog over roots. Call Scan to populate it.
func NewCatalog(roots []string, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		roots:   roots,
		logger:  logger,
		entries: make(map[string]Asset),
	}
}

// Scan rebuilds the catalog from disk. Roots that do not exist are skipped.
func (c *Catalog) Scan() error {
	entries := make(map[string]Asset)
	var mu sync.Mutex

	for _, root := range c.roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("failed to resolve asset root %q: %w", root, err)
		}
		if _, err := os.Stat(absRoot); os.IsNotExist(err) {
			c.logger.Debug("asset root missing, skipping", zap.String("root", absRoot))
			continue
		}

		conf := fastwalk.Config{Follow: false}
		err = fastwalk.Walk(&conf, absRoot, func(p string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(absRoot, p)
			if err != nil {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}

			key := "/" + path.Clean(filepath.ToSlash(rel))
			mu.Lock()
			if _, taken := entries[key]; !taken {
				entries[key] = Asset{
					FilePath:    p,
					ContentType: detectContentType(p),
					Size:        info.Size(),
				}
			}
			mu.Unlock()
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to scan asset root %q: %w", absRoot, err)
		}
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()

	c.logger.Info("asset catalog scanned",
		zap.Int("assets", len(entries)),
		zap.Strings("roots", c.roots))
	return nil
}

// Lookup resolves a URL path to a catalog entry.
func (c *Catalog) Lookup(urlPath string) (Asset, bool) {
	key := "/" + strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.entries[key]
	return a, ok
}

// Len returns the number of cataloged assets.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// webTypes pins content types that sniffing misreports as text/plain.
var webTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".mjs":  "text/javascript; charset=utf-8",
	".json": "application/json",
	".svg":  "image/svg+xml",
	".map":  "application/json",
}

func detectContentType(p string) string {
	if ct, ok := webTypes[strings.ToLower(filepath.Ext(p))]; ok {
		return ct
	}
	mtype, err := mimetype.DetectFile(p)
	if err != nil {
		return "application/octet-stream"
	}
	return mtype.String()
}
