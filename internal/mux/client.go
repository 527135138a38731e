// Package mux is the realtime transport handle consumed by the app shell.
// The wire format mirrors the event hub: JSON frames carrying topic, payload,
// and an optional retain flag, plus periodic heartbeat frames.
package mux

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/swarmakit/layoutd/internal/events"
	"github.com/swarmakit/layoutd/internal/manifest"
)

// Config describes one transport connection.
type Config struct {
	// URL is the websocket endpoint.
	URL string
	// Protocols lists websocket subprotocols offered during the handshake.
	Protocols []string
	// Manifest is the document the connection belongs to. The transport
	// stores it for the consumer but never inspects it.
	Manifest *manifest.Manifest
	// Heartbeat is the interval between heartbeat frames. Zero disables
	// heartbeats.
	Heartbeat time.Duration
	// Logger defaults to a nop logger.
	Logger *zap.Logger
}

// Conn is a live transport connection. Inbound frames fan out to topic
// subscribers; outbound frames are serialized through Publish.
type Conn struct {
	ws        *websocket.Conn
	manifest  *manifest.Manifest
	inbound   *events.Bus
	logger    *zap.Logger
	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to the mux endpoint described by cfg.
func Dial(ctx context.Context, cfg Config) (*Conn, error) {
	dialer := websocket.Dialer{
		Subprotocols:     cfg.Protocols,
		HandshakeTimeout: 10 * time.Second,
	}

	ws, resp, err := dialer.DialContext(ctx, cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect mux transport: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Conn{
		ws:       ws,
		manifest: cfg.Manifest,
		inbound:  events.NewBus(),
		logger:   logger,
		done:     make(chan struct{}),
	}

	go c.readPump()
	if cfg.Heartbeat > 0 {
		go c.heartbeat(cfg.Heartbeat)
	}

	return c, nil
}

// Manifest returns the document this connection was constructed with.
func (c *Conn) Manifest() *manifest.Manifest {
	return c.manifest
}

// Publish sends one frame on the connection.
func (c *Conn) Publish(topic string, payload map[string]interface{}, retain bool) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	err := c.ws.WriteJSON(events.Message{Topic: topic, Payload: payload, Retain: retain})
	if err != nil {
		return fmt.Errorf("failed to publish on mux transport: %w", err)
	}
	return nil
}

// Subscribe registers handler for inbound frames on topic. The returned
// function cancels the subscription.
func (c *Conn) Subscribe(topic string, handler events.Handler) func() {
	return c.inbound.Subscribe(topic, handler, false)
}

// Done is closed when the read loop exits.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Close shuts the connection down.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) readPump() {
	defer close(c.done)
	for {
		var msg events.Message
		if err := c.ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("mux read loop ended", zap.Error(err))
			}
			return
		}
		// Heartbeats and other topic-less frames are not dispatched.
		if msg.Topic == "" {
			continue
		}
		c.inbound.Publish(msg.Topic, msg.Payload, msg.Retain)
	}
}

func (c *Conn) heartbeat(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.ws.WriteJSON(map[string]string{"type": "heartbeat"})
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
