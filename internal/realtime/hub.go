package realtime

import (
	"net/http"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"kcald/internal/providers"
)

const (
	EventEntryAdded   = "entry_added"
	EventEntryDeleted = "entry_deleted"
	EventGoalChanged  = "goal_changed"
	EventDayRollover  = "day_rollover"
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Hub pushes state-change events to connected clients so an open page
// refreshes without polling. Single-user tracker: every client gets
// every event.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*websocket.Conn]struct{}
	logger   providers.Logger
	upgrader websocket.Upgrader
}

func NewHub(logger providers.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},
	}
}

// Handle upgrades the connection and keeps it registered until the
// client goes away. Inbound messages are drained and discarded; the
// socket is push-only.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnf(providers.TypeApp, "WebSocket upgrade failed: %s", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *Hub) Broadcast(eventType string, payload any) {
	msg, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		h.logger.Errorf(providers.TypeApp, "Event marshal failed: %s", err)
		return
	}

	// Full lock: gorilla allows only one concurrent writer per conn,
	// and broadcasts come from both handlers and the scheduler.
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.WriteMessage(websocket.TextMessage, msg)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.Close()
	}
	h.clients = make(map[*websocket.Conn]struct{})
}
