package realtime

import (
	"sync"
)

// Client represents a single websocket subscriber.
// The network conn itself is managed in the ws handler. Send queues the
// message and reports false when the client cannot take it.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub tracks subscribers of the invalidation stream and fans events out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[Client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[Client]struct{})}
}

// Register adds a subscriber.
func (h *Hub) Register(client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
}

// Unregister removes a subscriber.
func (h *Hub) Unregister(client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to every subscriber and returns how many
// accepted it. Clients are called outside the lock, so Send must not block;
// failed clients are cleaned up by their handler.
func (h *Hub) Broadcast(message []byte) int {
	h.mu.RLock()
	clients := make([]Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range clients {
		if c.Send(message) {
			delivered++
		}
	}
	return delivered
}
