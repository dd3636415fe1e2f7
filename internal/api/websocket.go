package api

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tillpoint/printbridge/internal/discovery"
	"github.com/tillpoint/printbridge/internal/logging"
)

// eventHub fans scan progress events out to connected WebSocket clients.
type eventHub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func newEventHub() *eventHub {
	return &eventHub{clients: make(map[*wsClient]struct{})}
}

func (h *eventHub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *eventHub) remove(c *wsClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// broadcast never blocks the sweep goroutine: clients that cannot keep up
// drop events.
func (h *eventHub) broadcast(ev discovery.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
		}
	}
}

// wsClient is one connected WebSocket consumer.
type wsClient struct {
	conn *websocket.Conn
	send chan discovery.Event
}

// handleWebSocket upgrades the connection and streams scan events until
// the client goes away.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan discovery.Event, 64),
	}
	s.hub.add(client)

	logging.Debug("websocket client connected", zap.String("remote", conn.RemoteAddr().String()))

	go client.writePump(s.hub)
	go client.readPump(s.hub)
}

func (c *wsClient) writePump(hub *eventHub) {
	defer c.conn.Close()

	for ev := range c.send {
		if err := c.conn.WriteJSON(ev); err != nil {
			hub.remove(c)
			return
		}
	}
}

// readPump only watches for the client closing; inbound messages are not
// part of the protocol.
func (c *wsClient) readPump(hub *eventHub) {
	defer func() {
		hub.remove(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
