package events

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"memeswap-router/internal/domain"
)

// Hub configuration defaults.
const (
	defaultWriteTimeout = 10 * time.Second
	defaultPingInterval = 30 * time.Second
	defaultPongTimeout  = 60 * time.Second
	defaultSendBuffer   = 64
)

// Hub broadcasts settlement events to WebSocket subscribers. Slow clients
// are disconnected rather than allowed to block the broadcast path.
type Hub struct {
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*hubClient]struct{}

	done   chan struct{}
	closed sync.Once
	wg     sync.WaitGroup
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a WebSocket broadcast hub.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Subscribers are dashboards and bots; no origin policy here,
			// access control belongs to the deployment in front.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*hubClient]struct{}),
		done:    make(chan struct{}),
	}
}

// Name identifies the sink.
func (h *Hub) Name() string { return "websocket" }

// Emit broadcasts the event to every connected subscriber.
func (h *Hub) Emit(_ context.Context, e *domain.SettlementEvent) error {
	payload, err := marshalEvent(e)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			// Client is not keeping up; drop it.
			go h.disconnect(c)
		}
	}
	return nil
}

// ServeHTTP upgrades the connection and registers the subscriber.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.done:
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("websocket upgrade failed: %v", err)
		return
	}

	c := &hubClient{conn: conn, send: make(chan []byte, defaultSendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.wg.Add(2)
	go h.writePump(c)
	go h.readPump(c)
}

// Close disconnects all subscribers and stops accepting new ones.
func (h *Hub) Close() {
	h.closed.Do(func() {
		close(h.done)

		h.mu.Lock()
		clients := make([]*hubClient, 0, len(h.clients))
		for c := range h.clients {
			clients = append(clients, c)
		}
		h.mu.Unlock()

		for _, c := range clients {
			h.disconnect(c)
		}
		h.wg.Wait()
	})
}

// writePump forwards broadcast payloads to the connection and keeps it alive
// with pings.
func (h *Hub) writePump(c *hubClient) {
	defer h.wg.Done()

	ticker := time.NewTicker(defaultPingInterval)
	defer ticker.Stop()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(defaultWriteTimeout))
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.disconnect(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.disconnect(c)
				return
			}
		case <-h.done:
			return
		}
	}
}

// readPump drains the connection (subscribers send nothing meaningful) and
// detects disconnects.
func (h *Hub) readPump(c *hubClient) {
	defer h.wg.Done()
	defer h.disconnect(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(defaultPongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(defaultPongTimeout))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// disconnect removes a client and closes its connection. Safe to call twice.
func (h *Hub) disconnect(c *hubClient) {
	h.mu.Lock()
	_, registered := h.clients[c]
	if registered {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if registered {
		c.conn.Close()
	}
}

// Verify interface compliance at compile time.
var _ Sink = (*Hub)(nil)
