package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/observability"
)

const maxClientMessageSize = 1024

// clientMessage is what a connected client may send. Join and leave are
// advisory: they are logged and otherwise carry no state.
type clientMessage struct {
	Event EventName `json:"event"`
}

// wsConn serializes writes to a websocket connection. The read pump (error
// replies) and the write pump (events, pings) both write, and gorilla
// connections allow only one concurrent writer.
type wsConn struct {
	conn         *websocket.Conn
	mu           sync.Mutex
	writeTimeout time.Duration
}

func (c *wsConn) writeEvent(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteJSON(event)
}

func (c *wsConn) writeControl(messageType int, data []byte) error {
	return c.conn.WriteControl(messageType, data, time.Now().Add(c.writeTimeout))
}

// ClientHandler upgrades HTTP requests to WebSocket connections and bridges
// them to the hub. Each connection runs a read pump and a write pump; the
// connection drops when either fails.
type ClientHandler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	cfg      config.RealtimeConfig
	logger   *slog.Logger
}

func NewClientHandler(hub *Hub, cfg config.RealtimeConfig, security config.SecurityConfig, logger *slog.Logger) *ClientHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range security.AllowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
		cfg:    cfg,
		logger: logger,
	}
}

// HandleWS is the GET /ws endpoint.
func (c *ClientHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		c.logger.Warn("websocket upgrade failed", "error", err, "request_id", requestID)
		return
	}

	ws := &wsConn{conn: conn, writeTimeout: c.cfg.WriteTimeout}

	events := c.hub.Subscribe()
	defer c.hub.Unsubscribe(events)

	c.logger.Info("realtime client connected",
		"remote_addr", conn.RemoteAddr().String(),
		"request_id", requestID,
	)

	if err := ws.writeEvent(Connected("connected to sales dashboard stream")); err != nil {
		c.logger.Warn("failed to greet client", "error", err, "request_id", requestID)
		conn.Close()
		return
	}

	var g errgroup.Group
	g.Go(func() error { return c.readPump(ws) })
	g.Go(func() error { return c.writePump(ws, events) })

	if err := g.Wait(); err != nil && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
		c.logger.Warn("realtime client error", "error", err, "request_id", requestID)
	}

	c.logger.Info("realtime client disconnected",
		"remote_addr", conn.RemoteAddr().String(),
		"request_id", requestID,
	)
}

// readPump consumes client messages until the connection dies. Pongs extend
// the read deadline; join/leave messages are logged; anything else gets a
// server:error back.
func (c *ClientHandler) readPump(ws *wsConn) error {
	conn := ws.conn
	conn.SetReadLimit(maxClientMessageSize)
	conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			c.sendClientError(ws, "malformed client message")
			continue
		}

		switch msg.Event {
		case EventClientJoin:
			c.logger.Info("client joined broadcast group", "remote_addr", conn.RemoteAddr().String())
		case EventClientLeave:
			c.logger.Info("client left broadcast group", "remote_addr", conn.RemoteAddr().String())
		default:
			c.sendClientError(ws, "unknown client event")
		}
	}
}

// writePump pushes hub events and pings to the client. Closing the connection
// on exit unblocks the read pump.
func (c *ClientHandler) writePump(ws *wsConn, events <-chan Event) error {
	pingInterval := c.cfg.PongTimeout * 9 / 10
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer ws.conn.Close()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				// Hub shut down or unsubscribed.
				ws.writeControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return nil
			}
			if err := ws.writeEvent(event); err != nil {
				return err
			}

		case <-ticker.C:
			if err := ws.writeControl(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func (c *ClientHandler) sendClientError(ws *wsConn, message string) {
	if err := ws.writeEvent(ErrorEvent(errors.BadRequest(message))); err != nil {
		c.logger.Debug("failed to send client error", "error", err)
	}
}
