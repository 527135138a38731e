package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/swarmakit/layoutd/internal/events"
	"github.com/swarmakit/layoutd/internal/infrastructure/monitoring"
)

// CloseUnavailable is the close code sent when the event hub is disabled.
const CloseUnavailable = 4404

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// Config tunes one hub instance.
type Config struct {
	// Channels restricts which topics fan out to clients; empty means all.
	Channels []string
	// ReplayLast replays each topic's retained message to new connections.
	ReplayLast bool
	// Heartbeat is the interval between heartbeat frames. Zero disables
	// heartbeats.
	Heartbeat time.Duration
}

// Hub bridges the event bus onto websocket clients. Every connection gets the
// configured channels fanned out; frames received from a client are published
// back onto the bus.
type Hub struct {
	bus     *events.Bus
	cfg     Config
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewHub creates a hub over bus. Logger and metrics may be nil.
func NewHub(bus *events.Bus, cfg Config, logger *zap.Logger, metrics *monitoring.Metrics) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{bus: bus, cfg: cfg, logger: logger, metrics: metrics}
}

// Bus returns the bus this hub fans out.
func (h *Hub) Bus() *events.Bus {
	return h.bus
}

// Handle upgrades the request and serves it until the client disconnects.
func (h *Hub) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	connID := uuid.NewString()
	outbound := make(chan events.Message, 64)
	done := make(chan struct{})

	forward := func(msg events.Message) {
		select {
		case outbound <- msg:
		default:
			h.logger.Warn("dropping frame for slow client",
				zap.String("conn", connID), zap.String("topic", msg.Topic))
		}
	}

	var cancels []func()
	if len(h.cfg.Channels) == 0 {
		cancels = append(cancels, h.bus.SubscribeAll(forward, h.cfg.ReplayLast))
	} else {
		for _, topic := range h.cfg.Channels {
			cancels = append(cancels, h.bus.Subscribe(topic, forward, h.cfg.ReplayLast))
		}
	}

	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
	h.logger.Debug("client connected", zap.String("conn", connID))

	go h.writePump(conn, outbound, done)

	for {
		var msg events.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("client read ended", zap.String("conn", connID), zap.Error(err))
			}
			break
		}
		// Topic-less frames (heartbeat echoes and the like) are dropped.
		if msg.Topic == "" {
			continue
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("inbound")
		}
		h.bus.Publish(msg.Topic, msg.Payload, msg.Retain)
	}

	for _, cancel := range cancels {
		cancel()
	}
	close(done)
	conn.Close()
	if h.metrics != nil {
		h.metrics.DecWSConnections()
	}
	h.logger.Debug("client disconnected", zap.String("conn", connID))
}

func (h *Hub) writePump(conn *websocket.Conn, outbound <-chan events.Message, done <-chan struct{}) {
	var tick <-chan time.Time
	if h.cfg.Heartbeat > 0 {
		ticker := time.NewTicker(h.cfg.Heartbeat)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-done:
			return
		case msg := <-outbound:
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
			if h.metrics != nil {
				h.metrics.RecordWSMessage("outbound")
			}
		case <-tick:
			if err := conn.WriteJSON(map[string]string{"type": "heartbeat"}); err != nil {
				return
			}
		}
	}
}

// HandleDisabled upgrades the request and immediately closes it with the
// unavailable code so clients learn the hub is off instead of seeing a plain
// handshake rejection.
func HandleDisabled(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(CloseUnavailable, "events disabled"),
		time.Now().Add(time.Second))
	conn.Close()
}
