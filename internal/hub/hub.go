package hub

import (
	"encoding/json"
	"sync"
)

// Event represents a real-time event pushed to a connected client, e.g. a
// "message" event when a new direct message arrives.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client represents a single client connection (one open event stream).
// It's essentially a channel that the SSE handler will listen to.
type Client chan []byte

// Hub fans events out to the connected clients of each user. A user may have
// several clients at once (multiple tabs or devices).
type Hub struct {
	users map[uint]map[Client]bool
	mu    sync.RWMutex
}

// New creates a new Hub.
func New() *Hub {
	return &Hub{
		users: make(map[uint]map[Client]bool),
	}
}

// Subscribe adds a new client for a user.
func (h *Hub) Subscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[Client]bool)
	}
	h.users[userID][client] = true
}

// Unsubscribe removes a client and closes its channel.
func (h *Hub) Unsubscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.users[userID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client) // Close the channel to signal the SSE handler to stop.
			if len(clients) == 0 {
				delete(h.users, userID)
			}
		}
	}
}

// Notify sends an event to every connected client of a user. Users with no
// open stream simply miss the push; the data is still in the database.
func (h *Hub) Notify(userID uint, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.users[userID]
	if !ok {
		return
	}
	messageBytes, err := json.Marshal(event)
	if err != nil {
		return
	}

	for client := range clients {
		// Use a non-blocking send to prevent a slow client from blocking the hub.
		select {
		case client <- messageBytes:
		default:
			// Client channel is full, maybe they are disconnected or slow.
			// The unsubscribe logic will handle cleaning this up eventually.
		}
	}
}
