package feed

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"msgboard/internal/model"
)

// broadcastBuffer is how many posted messages may wait for fan-out before
// Publish starts dropping.
const broadcastBuffer = 100

// Hub streams newly posted messages to connected websocket clients
type Hub struct {
	logger    *zap.Logger
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientMu  sync.RWMutex
	broadcast chan model.Message
}

// NewHub creates a Hub accepting websocket upgrades from allowedOrigins.
func NewHub(logger *zap.Logger, allowedOrigins []string) *Hub {
	return &Hub{
		logger:    logger,
		upgrader:  createUpgrader(allowedOrigins),
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan model.Message, broadcastBuffer),
	}
}

// createUpgrader creates a WebSocket upgrader with the given allowed origins
func createUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowedMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		allowedMap[origin] = true
	}

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return allowedMap[r.Header.Get("Origin")]
		},
	}
}

// Router serves the feed on /ws.
func (h *Hub) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws", h.HandleWebSocket).Methods(http.MethodGet)
	return r
}

// Publish queues msg for every subscriber. It never blocks the caller.
func (h *Hub) Publish(msg model.Message) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("feed saturated, dropping message", zap.Int64("timestamp", msg.Timestamp))
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.clientMu.RLock()
	defer h.clientMu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket handles GET /ws
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.clientMu.Lock()
	h.clients[conn] = true
	total := len(h.clients)
	h.clientMu.Unlock()

	h.logger.Info("feed client connected", zap.Int("clients", total))

	// Reads only detect disconnects; client frames are discarded.
	for {
		if _, _, err := conn.NextReader(); err != nil {
			h.remove(conn)
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.clientMu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	remaining := len(h.clients)
	h.clientMu.Unlock()

	if ok {
		h.logger.Info("feed client disconnected", zap.Int("clients", remaining))
	}
}

// Run fans queued messages out to all clients until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg := <-h.broadcast:
			h.send(msg)
		}
	}
}

func (h *Hub) send(msg model.Message) {
	// Snapshot first so a failed client can be removed without writing to
	// the map during iteration.
	h.clientMu.RLock()
	snapshot := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		snapshot = append(snapshot, client)
	}
	h.clientMu.RUnlock()

	for _, client := range snapshot {
		if err := client.WriteJSON(msg); err != nil {
			client.Close()
			h.remove(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.clientMu.Lock()
	defer h.clientMu.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}
