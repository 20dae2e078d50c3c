package event

import (
	"sync"

	"github.com/rs/zerolog/log"
)

const clientBufferSize = 32

// Client is one live connection. Events are delivered through Events();
// a client that falls behind loses events rather than stalling the hub.
type Client struct {
	ID          string
	PrincipalID string
	Role        string

	events   chan Event
	channels map[string]struct{}
	closed   bool
}

func NewClient(id, principalID, role string) *Client {
	return &Client{
		ID:          id,
		PrincipalID: principalID,
		Role:        role,
		events:      make(chan Event, clientBufferSize),
		channels:    make(map[string]struct{}),
	}
}

// Events is closed when the client is unregistered.
func (c *Client) Events() <-chan Event {
	return c.events
}

type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	channels map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:  make(map[*Client]struct{}),
		channels: make(map[string]map[*Client]struct{}),
	}
}

// Register adds the client and joins it to the channel named after its principal.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.joinLocked(client, client.PrincipalID)
	total := len(h.clients)
	h.mu.Unlock()

	log.Info().Str("client", client.ID).Str("principal", client.PrincipalID).Str("role", client.Role).
		Int("total", total).Msg("real-time client connected")
}

// Unregister removes the client from every channel and closes its event stream.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	for channel := range client.channels {
		h.leaveLocked(client, channel)
	}
	client.closed = true
	close(client.events)
	total := len(h.clients)
	h.mu.Unlock()

	log.Info().Str("client", client.ID).Str("principal", client.PrincipalID).
		Int("total", total).Msg("real-time client disconnected")
}

func (h *Hub) Join(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	h.joinLocked(client, channel)
}

func (h *Hub) Leave(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// The principal channel is permanent for the life of the connection.
	if channel == client.PrincipalID {
		return
	}
	h.leaveLocked(client, channel)
}

func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		h.deliver(client, event)
	}
}

func (h *Hub) EmitTo(channel string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.channels[channel] {
		h.deliver(client, event)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) joinLocked(client *Client, channel string) {
	if channel == "" {
		return
	}
	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[*Client]struct{})
	}
	h.channels[channel][client] = struct{}{}
	client.channels[channel] = struct{}{}
}

func (h *Hub) leaveLocked(client *Client, channel string) {
	if members, ok := h.channels[channel]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.channels, channel)
		}
	}
	delete(client.channels, channel)
}

// deliver must be called with h.mu held.
func (h *Hub) deliver(client *Client, event Event) {
	if client.closed {
		return
	}
	select {
	case client.events <- event:
	default:
		log.Warn().Str("client", client.ID).Str("event", event.Name).Msg("client buffer full, event dropped")
	}
}
