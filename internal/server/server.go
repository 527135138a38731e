package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/swarmakit/layoutd/internal/api/http"
	"github.com/swarmakit/layoutd/internal/api/middleware"
	"github.com/swarmakit/layoutd/internal/assets"
	"github.com/swarmakit/layoutd/internal/events"
	"github.com/swarmakit/layoutd/internal/infrastructure/config"
	"github.com/swarmakit/layoutd/internal/infrastructure/logging"
	"github.com/swarmakit/layoutd/internal/infrastructure/monitoring"
	"github.com/swarmakit/layoutd/internal/store"
	"github.com/swarmakit/layoutd/internal/ws"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router  *gin.Engine
	httpSrv *http.Server
	logger  *logging.Logger
	metrics *monitoring.Metrics
	store   *store.Store
	catalog *assets.Catalog
	bus     *events.Bus
}

// New assembles a server from configuration: seeds the manifest store, scans
// the asset catalog, and registers every route under the configured mount
// path.
func New(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewDefault()
	}

	metrics := monitoring.NewMetrics()

	st := store.New()
	seeded, err := store.Seed(st, store.SeedConfig{
		Dir:      cfg.Manifests.Dir,
		Patterns: cfg.Manifests.Patterns,
		Logger:   logger.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed manifest store: %w", err)
	}
	metrics.SetStoredManifests(seeded)

	catalog := assets.NewCatalog(cfg.Assets.Roots, logger.Logger)
	if err := catalog.Scan(); err != nil {
		return nil, fmt.Errorf("failed to scan assets: %w", err)
	}

	bus := events.NewBus()

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	router.Use(middleware.Gzip())
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(st, catalog, metrics, logger.Logger, cfg.Manifests.Default)

	mount := router.Group(mountPath(cfg.Server.MountPath))
	mount.GET("/", handlers.Root)
	mount.GET("/health", handlers.Health)
	mount.GET("/status", handlers.Status)
	mount.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))

	mount.GET("/manifest.json", handlers.GetDefaultManifest)
	mount.GET("/manifests", handlers.ListManifests)
	mount.GET("/manifests/:id", handlers.GetManifest)

	mount.GET("/assets/*path", handlers.GetAsset)

	if cfg.Events.Enabled {
		hub := ws.NewHub(bus, ws.Config{
			Channels:   cfg.Events.Channels,
			ReplayLast: cfg.Events.ReplayLast,
			Heartbeat:  cfg.Events.Heartbeat,
		}, logger.Logger, metrics)
		mount.GET(cfg.Events.Route, hub.Handle)
	} else {
		mount.GET(cfg.Events.Route, ws.HandleDisabled)
	}

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	return &Server{
		router:  router,
		httpSrv: &http.Server{Addr: addr, Handler: router},
		logger:  logger,
		metrics: metrics,
		store:   st,
		catalog: catalog,
		bus:     bus,
	}, nil
}

// Router exposes the assembled engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Bus exposes the event bus so embedders can publish server-side events.
func (s *Server) Bus() *events.Bus {
	return s.bus
}

// Run starts the server and blocks until it stops.
func (s *Server) Run() error {
	s.logger.Info("server listening",
		zap.String("addr", s.httpSrv.Addr),
		zap.Int("manifests", s.store.Len()),
		zap.Int("assets", s.catalog.Len()))

	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// mountPath normalizes the configured prefix for gin's route group.
func mountPath(p string) string {
	p = "/" + strings.Trim(p, "/")
	if p == "/" {
		return ""
	}
	return p
}
