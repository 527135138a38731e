// Package server provides HTTP server setup and initialization.
//
// This package orchestrates all components:
//   - HTTP routing with Gin framework
//   - Middleware stack (metrics, CORS, gzip, rate limiting, recovery)
//   - Manifest store seeding from disk
//   - Static asset catalog scanning
//   - WebSocket event hub wiring
//
// Server Lifecycle:
//  1. Load configuration from environment/file
//  2. Initialize logger (production or development)
//  3. Seed manifests and scan assets
//  4. Setup HTTP routes and middleware
//  5. Start HTTP server
//  6. Graceful shutdown on signal
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.New(cfg, logger)
//	if err := srv.Run(); err != nil {
//	    logger.Fatal("server failed", zap.Error(err))
//	}
package server
