// Package shell assembles a ready-to-use app bundle from a manifest URL:
// loader, DI context, and the optional realtime transport, wired in one call.
package shell

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/swarmakit/layoutd/internal/appctx"
	"github.com/swarmakit/layoutd/internal/atom"
	"github.com/swarmakit/layoutd/internal/events"
	"github.com/swarmakit/layoutd/internal/fetch"
	"github.com/swarmakit/layoutd/internal/loader"
	"github.com/swarmakit/layoutd/internal/manifest"
	"github.com/swarmakit/layoutd/internal/mux"
	"github.com/swarmakit/layoutd/internal/nav"
	"github.com/swarmakit/layoutd/internal/reactive"
	"github.com/swarmakit/layoutd/internal/registry"
)

// Options configure CreateApp.
type Options struct {
	// ManifestURL locates the manifest document. Required.
	ManifestURL string
	// MuxURL, when set, triggers construction of the realtime transport.
	MuxURL string
	// MuxProtocols lists websocket subprotocols; only meaningful with MuxURL.
	MuxProtocols []string
	// MuxHeartbeat sets the transport heartbeat interval; only meaningful
	// with MuxURL.
	MuxHeartbeat time.Duration

	// Loader overrides the default loader (and its process-lifetime caches).
	Loader *loader.Loader
	// Fetcher, Resolver, and CacheKey pass through to the loader call.
	Fetcher  fetch.Fetcher
	Resolver atom.Resolver
	CacheKey string

	// Events, when set, is installed as the context's event bus.
	Events *events.Bus
	// Logger defaults to a nop logger.
	Logger *zap.Logger
}

// App is the assembled bundle. Manifest and Components are live holders:
// replacing their value is how a manifest hot reload would propagate, though
// no reload entry point exists yet.
type App struct {
	Context    *appctx.Context
	Manifest   *reactive.Ref[*manifest.Manifest]
	Components *reactive.Ref[*registry.Registry]
	Transport  *mux.Conn
}

// Tiles returns the current manifest's tile list in rendering order.
func (a *App) Tiles() []manifest.Tile {
	m := a.Manifest.Get()
	if m == nil {
		return nil
	}
	return m.Tiles
}

// Navigation returns a navigator tracking this app's live manifest. Each
// call creates an independent subscription; Close it separately.
func (a *App) Navigation() *nav.Navigator {
	return nav.New(a.Manifest)
}

// Close tears down the transport if one was constructed.
func (a *App) Close() error {
	if a.Transport != nil {
		return a.Transport.Close()
	}
	return nil
}

var defaultLoader = loader.New(loader.Config{})

// CreateApp loads the manifest, optionally connects the mux transport, and
// wraps everything into an installed DI context. Load or dial failures abort
// the whole call; there is no partial-success mode.
func CreateApp(ctx context.Context, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ld := opts.Loader
	if ld == nil {
		ld = defaultLoader
	}

	result, err := ld.Load(ctx, opts.ManifestURL, &loader.Options{
		Fetcher:  opts.Fetcher,
		Resolver: opts.Resolver,
		CacheKey: opts.CacheKey,
	})
	if err != nil {
		return nil, err
	}

	var transport *mux.Conn
	if opts.MuxURL != "" {
		transport, err = mux.Dial(ctx, mux.Config{
			URL:       opts.MuxURL,
			Protocols: opts.MuxProtocols,
			Manifest:  result.Manifest,
			Heartbeat: opts.MuxHeartbeat,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("mux transport connected", zap.String("url", opts.MuxURL))
	}

	manifestRef := reactive.NewRef(result.Manifest)
	componentsRef := reactive.NewRef(result.Components)

	ctxOpts := []appctx.Option{}
	if transport != nil {
		ctxOpts = append(ctxOpts, appctx.WithTransport(transport))
	}
	if opts.Events != nil {
		ctxOpts = append(ctxOpts, appctx.WithEvents(opts.Events))
	}

	return &App{
		Context:    appctx.New(manifestRef, componentsRef, ctxOpts...),
		Manifest:   manifestRef,
		Components: componentsRef,
		Transport:  transport,
	}, nil
}
