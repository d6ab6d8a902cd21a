package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/wrenqi/daystar/internal/contracts"
	"github.com/wrenqi/daystar/pkg/logger"
)

// Hub pushes actionable signals to connected websocket clients.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewHub creates a new alert hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: log,
	}
}

// ServeWS upgrades the connection and registers the client. The read
// loop only watches for the client closing.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	h.logger.WithField("remote", conn.RemoteAddr().String()).Debug("Alert client connected")

	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast pushes one signal to every connected client. Clients that
// fail to receive are dropped.
func (h *Hub) Broadcast(sig contracts.FusedSignal) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(sig); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// BroadcastActionable pushes every actionable signal in the set.
func (h *Hub) BroadcastActionable(signals []contracts.FusedSignal) {
	for _, sig := range signals {
		if sig.Grade.Actionable() {
			h.Broadcast(sig)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) remove(conn *websocket.Conn) {
	conn.Close()

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}
