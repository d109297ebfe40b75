package simulator

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/modflow/modflow/pkg/metrics"
)

// defaultWriteTimeout bounds each WebSocket send. A viewer that stops
// reading fills its TCP window and would otherwise block WriteJSON
// forever; the deadline turns that stall into a write error so the
// client gets dropped like any other failed send.
const defaultWriteTimeout = 5 * time.Second

// client pairs a connection with its write lock. Gorilla connections
// allow at most one concurrent writer, so broadcasts and control-frame
// acks serialize per connection, not across the whole hub.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Hub tracks connected WebSocket clients and broadcasts pipeline
// results to all of them. Clients that fail a write are dropped on the
// spot; a slow or dead viewer must never stall the stream.
type Hub struct {
	mu           sync.RWMutex
	conns        map[*websocket.Conn]*client
	writeTimeout time.Duration
	logger       *slog.Logger
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		conns:        make(map[*websocket.Conn]*client),
		writeTimeout: defaultWriteTimeout,
		logger:       slog.Default().With("component", "hub"),
	}
}

// Add registers a client connection.
func (h *Hub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = &client{conn: conn}
	total := len(h.conns)
	h.mu.Unlock()

	metrics.ChatActiveWebsocketConnections.Set(float64(total))
	h.logger.Info("WebSocket client connected", "total", total)
}

// Remove unregisters a client connection.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.conns[conn]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, conn)
	total := len(h.conns)
	h.mu.Unlock()

	metrics.ChatActiveWebsocketConnections.Set(float64(total))
	h.logger.Info("WebSocket client disconnected", "total", total)
}

// Count reports the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Send writes v to one registered connection, serialized with
// concurrent broadcasts to the same client. Unregistered connections
// are a no-op.
func (h *Hub) Send(conn *websocket.Conn, v any) error {
	h.mu.RLock()
	cl, ok := h.conns[conn]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	return h.write(cl, v)
}

// Broadcast sends v to every connected client, dropping clients whose
// write fails or times out. The connection set is snapshotted under the
// lock and writes happen outside it, so a slow client delays only its
// own frame while Add, Remove and Count stay responsive.
func (h *Hub) Broadcast(v any) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.conns))
	for _, cl := range h.conns {
		clients = append(clients, cl)
	}
	h.mu.RUnlock()

	for _, cl := range clients {
		if err := h.write(cl, v); err != nil {
			h.logger.Warn("Dropping WebSocket client after failed write", "error", err)
			h.Remove(cl.conn)
			_ = cl.conn.Close()
		}
	}
}

// write sends one frame under the client's write lock with the hub's
// write deadline applied.
func (h *Hub) write(cl *client, v any) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	_ = cl.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	return cl.conn.WriteJSON(v)
}
