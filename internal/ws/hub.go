// Package ws is the local snapshot fan-out hub: a broadcast-to-all
// websocket registry, independent of the order book's own locking. It
// never touches the book; it only ever sees already-built snapshot JSON
// handed to it by the caller.
package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub holds the set of connected snapshot subscribers.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub returns an empty fan-out hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{})}
}

// ServeHTTP upgrades the connection and registers it as a subscriber.
// Subscribers are read-only from the engine's perspective: the only
// inbound traffic this handler expects is the close frame, which reading
// in a loop lets gorilla/websocket handle via ReadMessage's error return.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	log.Info().Str("remote", r.RemoteAddr).Msg("snapshot subscriber connected")

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
	log.Info().Str("remote", r.RemoteAddr).Msg("snapshot subscriber disconnected")
}

// Broadcast pushes payload to every connected subscriber, dropping and
// closing any connection whose write fails.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Warn().Err(err).Msg("dropping unresponsive snapshot subscriber")
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// Count reports the number of connected subscribers, used by the health
// endpoint.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
