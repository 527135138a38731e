/*
Package monitoring provides Prometheus-based metrics collection.

Tracks HTTP requests, manifest loads and cache hits, atom resolutions,
and WebSocket connections. Each Metrics instance owns its registry so
collectors never collide across instances.

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record domain events
	metrics.RecordLoad()
	metrics.RecordCacheHit()

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))
*/
package monitoring
