// Package ws provides the WebSocket event hub.
//
// Clients connect once and exchange JSON frames shaped like
// {"topic": ..., "payload": {...}, "retain": bool}. Frames published by one
// client fan out to every other client subscribed through the shared bus,
// and retained frames replay to late joiners when configured. The hub also
// emits periodic {"type": "heartbeat"} frames; topic-less frames from
// clients are ignored.
//
// Example Usage:
//
//	hub := ws.NewHub(bus, ws.Config{ReplayLast: true, Heartbeat: 25 * time.Second}, logger, metrics)
//	router.GET("/events", hub.Handle)
package ws
