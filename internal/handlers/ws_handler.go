package handlers

import (
	"net/http"
	"sync"
	"time"
	"translation-api/internal/middleware"
	"translation-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
	wsSendBuffer = 64
)

// wsClient implements realtime.Client by queueing messages for the
// connection's write loop. A subscriber too slow to drain its queue is
// disconnected rather than slowing down the writers that broadcast.
type wsClient struct {
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{conn: conn, send: make(chan []byte, wsSendBuffer)}
}

func (c *wsClient) Send(message []byte) bool {
	if c == nil {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		c.Close()
		return false
	}
}

func (c *wsClient) Close() {
	if c == nil || c.conn == nil {
		return
	}
	c.closeOnce.Do(func() { _ = c.conn.Close() })
}

// writeLoop is the only writer on the connection. It drains the queue and
// sends heartbeat pings until done is closed or a write fails.
func (c *wsClient) writeLoop(done <-chan struct{}) {
	pingTicker := time.NewTicker(wsPingPeriod)
	defer pingTicker.Stop()
	for {
		select {
		case <-done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.Close()
				return
			}
		case <-pingTicker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(wsWriteWait)); err != nil {
				// ping failed; reader loop will exit on next error
				return
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is already handled at Gin level; allow upgrade from any origin here
		return true
	},
}

// StreamHandler pushes cache invalidation events to subscribed fronting caches.
type StreamHandler struct {
	hub    *realtime.Hub
	logger zerolog.Logger
}

// NewStreamHandler creates a StreamHandler.
func NewStreamHandler(hub *realtime.Hub, logger zerolog.Logger) *StreamHandler {
	return &StreamHandler{hub: hub, logger: logger}
}

// Subscribe handles GET /admin/invalidations
// It requires JWT middleware to have set the admin username in context.
func (h *StreamHandler) Subscribe(c *gin.Context) {
	admin := c.GetString(middleware.AdminUserKey)
	if admin == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authorized"})
		return
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := newWSClient(conn)
	h.hub.Register(client)
	h.logger.Info().Str("admin", admin).Int("subscribers", h.hub.Len()).Msg("Invalidation subscriber connected")

	done := make(chan struct{})
	go client.writeLoop(done)
	defer func() {
		close(done)
		h.hub.Unregister(client)
		client.Close()
		h.logger.Info().Str("admin", admin).Msg("Invalidation subscriber disconnected")
	}()

	// Reader loop: drain messages and keep connection alive via pong handler
	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			// Normal close or error; exit loop
			return
		}
	}
}
