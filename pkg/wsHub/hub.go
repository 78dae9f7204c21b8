package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/Temutjin2k/niva/pkg/logger"
	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
	"github.com/Temutjin2k/niva/pkg/metrics"
	"github.com/google/uuid"
)

var (
	ErrEmptyConn      = errors.New("connection is empty")
	ErrConnIsNotFound = errors.New("connection not found")
)

// ConnectionHub keeps the active websocket connection of every user.
type ConnectionHub struct {
	clients map[uuid.UUID]*Conn
	service string
	l       logger.Logger
	mu      sync.Mutex
}

func NewConnHub(service string, l logger.Logger) *ConnectionHub {
	return &ConnectionHub{
		clients: make(map[uuid.UUID]*Conn),
		service: service,
		l:       l,
	}
}

// Add registers a connection. An existing connection of the same user is closed.
func (h *ConnectionHub) Add(newConn *Conn) error {
	if newConn == nil {
		return ErrEmptyConn
	}

	h.mu.Lock()
	existing, replaced := h.clients[newConn.userID]
	h.clients[newConn.userID] = newConn
	count := len(h.clients)
	h.mu.Unlock()

	metrics.WebSocketConnectionsGauge.WithLabelValues(h.service).Set(float64(count))

	if replaced {
		ctx := wrap.WithAction(context.Background(), "ws_connection_replace")
		h.l.Warn(ctx, "replacing existing connection", "user_id", existing.userID)
		if err := existing.Close(); err != nil {
			h.l.Warn(ctx, "failed to close existing conn", "user_id", existing.userID, "err", err.Error())
		}
	}
	return nil
}

// Remove closes conn and unregisters it if it is still the user's current connection.
func (h *ConnectionHub) Remove(conn *Conn) {
	if conn == nil {
		return
	}

	h.mu.Lock()
	if current, ok := h.clients[conn.userID]; ok && current == conn {
		delete(h.clients, conn.userID)
	}
	count := len(h.clients)
	h.mu.Unlock()

	metrics.WebSocketConnectionsGauge.WithLabelValues(h.service).Set(float64(count))

	if err := conn.Close(); err != nil {
		h.l.Debug(context.Background(), "failed to close conn", "user_id", conn.userID, "err", err.Error())
	}
}

// SendTo sends a message to the user's connection.
// Returns ErrConnIsNotFound when the user is not connected.
func (h *ConnectionHub) SendTo(id uuid.UUID, msg any) error {
	h.mu.Lock()
	conn, ok := h.clients[id]
	h.mu.Unlock()

	if !ok {
		return ErrConnIsNotFound
	}
	return conn.Send(msg)
}

func (h *ConnectionHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close closes every websocket connection.
func (h *ConnectionHub) Close() {
	h.mu.Lock()
	clients := make([]*Conn, 0, len(h.clients))
	for _, conn := range h.clients {
		clients = append(clients, conn)
	}
	h.clients = make(map[uuid.UUID]*Conn)
	h.mu.Unlock()

	for _, conn := range clients {
		_ = conn.Close()
	}
	metrics.WebSocketConnectionsGauge.WithLabelValues(h.service).Set(0)

	h.l.Info(wrap.WithAction(context.Background(), "hub_close"), "all websocket connections closed gracefully", "closed", len(clients))
}
