package events

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"blogspace/internal/common/constants"
	"blogspace/internal/common/logger"
	"blogspace/internal/observability/metrics"
)

type message struct {
	Type string `json:"type"`
}

// Hub pushes post-change notifications to connected browser clients so an
// open list view can refresh without polling. The stream is read-only and
// unauthenticated; it carries no post data, only the event type.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	closed   bool
	upgrader websocket.Upgrader
	log      *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				host := r.Host
				if host == "" {
					host = r.URL.Host
				}
				return origin == "http://"+host || origin == "https://"+host
			},
		},
		log: log,
	}
}

func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warnf("event client upgrade failed: %v", err)
			return
		}

		h.register(conn)
		go h.readUntilClose(conn)
	}
}

// PostsChanged implements the post service's Notifier.
func (h *Hub) PostsChanged() {
	h.broadcast(message{Type: "posts_changed"})
}

func (h *Hub) broadcast(msg message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(constants.EventWriteTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			h.log.Debugf("event client write failed, dropping: %v", err)
			h.dropLocked(conn)
		}
	}
}

// Close disconnects all clients; used as a shutdown hook.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for conn := range h.clients {
		h.dropLocked(conn)
	}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		conn.Close()
		return
	}

	h.clients[conn] = struct{}{}
	metrics.EventClientsConnected.Inc()
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[conn]; ok {
		h.dropLocked(conn)
	}
}

func (h *Hub) dropLocked(conn *websocket.Conn) {
	delete(h.clients, conn)
	conn.Close()
	metrics.EventClientsConnected.Dec()
}

// readUntilClose drains the connection so control frames are processed and
// a client disconnect is noticed.
func (h *Hub) readUntilClose(conn *websocket.Conn) {
	defer h.unregister(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
