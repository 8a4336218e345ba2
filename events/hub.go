package events

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Notification is one registry membership change, broadcast verbatim to
// every connected client as JSON.
type Notification struct {
	Type      string    `json:"type"` // "online", "offline", "evicted"
	Serial    string    `json:"serial"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub fans registry.Listener callbacks out to every connected websocket
// client. It implements registry.Listener without importing the registry
// package, so registry never depends on events.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]chan Notification

	logger *slog.Logger
}

// NewHub constructs an empty Hub, ready to be registered on a
// registry.Registry via AddListener and mounted at an HTTP path via
// ServeHTTP.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(*http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*websocket.Conn]chan Notification),
		logger:  logger,
	}
}

// DeviceOnline satisfies registry.Listener.
func (h *Hub) DeviceOnline(serial string) { h.broadcast(Notification{Type: "online", Serial: serial}) }

// DeviceOffline satisfies registry.Listener.
func (h *Hub) DeviceOffline(serial string) {
	h.broadcast(Notification{Type: "offline", Serial: serial})
}

// DeviceEvicted satisfies registry.Listener.
func (h *Hub) DeviceEvicted(serial string) {
	h.broadcast(Notification{Type: "evicted", Serial: serial})
}

func (h *Hub) broadcast(n Notification) {
	n.Timestamp = time.Now()
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.clients {
		select {
		case ch <- n:
		default:
			// Slow client; drop rather than block the registry callback.
		}
	}
}

// ServeHTTP upgrades the request to a websocket and streams notifications
// until the client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("events: upgrade failed", "error", err)
		return
	}

	ch := make(chan Notification, 16)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		_ = conn.Close()
	}()

	go h.drainPings(conn)

	for n := range ch {
		data, err := json.Marshal(n)
		if err != nil {
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// drainPings discards client->server control/data frames, so the read side
// of the socket never backs up the TCP connection; it returns (and the
// caller's deferred cleanup runs) once the client disconnects.
func (h *Hub) drainPings(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.mu.Lock()
			if ch, ok := h.clients[conn]; ok {
				close(ch)
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			return
		}
	}
}

// ClientCount reports how many websocket clients are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
