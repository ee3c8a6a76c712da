package http

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"live-poll-service/internal/metrics"
)

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type client struct {
	id      string
	claimed string
	conn    *websocket.Conn
	send    chan []byte
}

// Hub tracks live connections and implements app.Broadcaster. Frames are queued on
// buffered per-connection channels; a connection that cannot keep up is dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*client
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		log:     log,
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
	metrics.OpenConnections.Inc()
}

// remove closes the client's queue; the write pump flushes it and closes the socket.
func (h *Hub) remove(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(connID)
}

func (h *Hub) removeLocked(connID string) {
	c, ok := h.clients[connID]
	if !ok {
		return
	}
	delete(h.clients, connID)
	close(c.send)
	metrics.OpenConnections.Dec()
}

// CloseAll removes every connection. Their write pumps send a close frame and exit.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range h.clients {
		h.removeLocked(id)
	}
}

// Len reports the number of live connections.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) BroadcastAll(event string, payload any) {
	data, ok := h.encode(event, payload)
	if !ok {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		h.deliverLocked(c, data)
	}
	metrics.EventCounter.WithLabelValues(event, "out").Add(float64(len(h.clients)))
}

func (h *Hub) SendTo(connID, event string, payload any) {
	data, ok := h.encode(event, payload)
	if !ok {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[connID]; ok {
		h.deliverLocked(c, data)
		metrics.EventCounter.WithLabelValues(event, "out").Inc()
	}
}

func (h *Hub) Disconnect(connID string) {
	h.remove(connID)
}

func (h *Hub) deliverLocked(c *client, data []byte) {
	select {
	case c.send <- data:
	default:
		h.log.Warn("send buffer full, dropping connection", zap.String("conn", c.id))
		metrics.DroppedConnections.Inc()
		h.removeLocked(c.id)
	}
}

func (h *Hub) encode(event string, payload any) ([]byte, bool) {
	data, err := json.Marshal(outboundMessage{Type: event, Payload: payload})
	if err != nil {
		h.log.Error("encode outbound event", zap.String("type", event), zap.Error(err))
		return nil, false
	}
	return data, true
}
