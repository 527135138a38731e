// Package http implements the HTTP API: manifest delivery with ETag
// revalidation, the static asset catalog, and service health endpoints.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/swarmakit/layoutd/internal/assets"
	"github.com/swarmakit/layoutd/internal/infrastructure/monitoring"
	"github.com/swarmakit/layoutd/internal/manifest"
	"github.com/swarmakit/layoutd/internal/store"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	store     *store.Store
	catalog   *assets.Catalog
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	defaultID string
	started   time.Time
}

// NewHandlers creates HTTP handlers. Catalog and metrics may be nil.
func NewHandlers(st *store.Store, catalog *assets.Catalog, metrics *monitoring.Metrics, logger *zap.Logger, defaultID string) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		store:     st,
		catalog:   catalog,
		metrics:   metrics,
		logger:    logger,
		defaultID: defaultID,
		started:   time.Now(),
	}
}

// Root returns service information.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "layoutd",
		"version": "1.0.0",
		"status":  "running",
		"endpoints": gin.H{
			"manifest":  "/manifest.json",
			"manifests": "/manifests/:id",
			"assets":    "/assets/*path",
			"health":    "/health",
			"metrics":   "/metrics",
		},
	})
}

// Health returns service health status.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"service":        "layoutd",
		"manifests":      h.store.Len(),
		"uptime_seconds": time.Since(h.started).Seconds(),
		"timestamp":      time.Now().Unix(),
	})
}

// Status returns a JSON snapshot of request counters.
func (h *Handlers) Status(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, h.metrics.GetSnapshot())
}

// GetDefaultManifest serves the manifest configured as the default document.
func (h *Handlers) GetDefaultManifest(c *gin.Context) {
	h.serveManifest(c, h.defaultID)
}

// GetManifest serves the manifest stored under the id route parameter.
func (h *Handlers) GetManifest(c *gin.Context) {
	h.serveManifest(c, c.Param("id"))
}

// ListManifests returns the ids of every stored manifest.
func (h *Handlers) ListManifests(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"manifests": h.store.IDs()})
}

func (h *Handlers) serveManifest(c *gin.Context, id string) {
	m, ok := h.store.Get(id)
	if !ok {
		h.recordManifest(id, http.StatusNotFound)
		c.JSON(http.StatusNotFound, gin.H{"error": "manifest not found", "id": id})
		return
	}

	etag := `"` + m.ETag + `"`
	c.Header("ETag", etag)
	// Clients may cache but must revalidate so edits propagate on reload.
	c.Header("Cache-Control", "no-cache")

	if c.GetHeader("If-None-Match") == etag {
		h.recordManifest(id, http.StatusNotModified)
		c.Status(http.StatusNotModified)
		return
	}

	data, err := manifest.EncodeJSON(m)
	if err != nil {
		h.recordManifest(id, http.StatusInternalServerError)
		h.logger.Error("manifest encode failed", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode manifest"})
		return
	}

	h.recordManifest(id, http.StatusOK)
	c.Data(http.StatusOK, "application/json", data)
}

func (h *Handlers) recordManifest(id string, status int) {
	if h.metrics != nil {
		h.metrics.RecordManifestRequest(id, http.StatusText(status))
	}
}

// GetAsset serves one cataloged static file.
func (h *Handlers) GetAsset(c *gin.Context) {
	if h.catalog == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "assets not configured"})
		return
	}

	asset, ok := h.catalog.Lookup(c.Param("path"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
		return
	}

	c.Header("Content-Type", asset.ContentType)
	c.Header("Cache-Control", "public, max-age=300")
	c.File(asset.FilePath)
}
