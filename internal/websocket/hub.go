package websocket

import (
	"sync"

	"github.com/isdelr/todoshare-be/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Lifecycle is told about every connection the hub attaches or drops.
type Lifecycle interface {
	Connect(connID string)
	Disconnect(connID string)
}

// Hub maintains the set of active clients and queues frames for them.
type Hub struct {
	mu sync.RWMutex

	// Registered clients by connection id.
	clients map[string]*Client

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	lifecycle Lifecycle
	done      chan struct{}
	stopOnce  sync.Once
}

// NewHub creates a new Hub. lifecycle may be nil.
func NewHub(lifecycle Lifecycle) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[string]*Client),
		lifecycle:  lifecycle,
		done:       make(chan struct{}),
	}
}

// Run starts the Hub's processing loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mu.Unlock()
			metrics.WsConnections.Inc()
			log.Info().Str("conn_id", client.ID).Int("total_clients", total).Msg("Client connected")
		case client := <-h.Unregister:
			h.mu.Lock()
			_, ok := h.clients[client.ID]
			if ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			if !ok {
				continue
			}
			if h.lifecycle != nil {
				h.lifecycle.Disconnect(client.ID)
			}
			metrics.WsConnections.Dec()
			log.Info().Str("conn_id", client.ID).Int("total_clients", total).Msg("Client disconnected")
		case <-h.done:
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.Send)
				if h.lifecycle != nil {
					h.lifecycle.Disconnect(id)
				}
				metrics.WsConnections.Dec()
			}
			h.mu.Unlock()
			log.Info().Msg("Websocket hub stopped")
			return
		}
	}
}

// Stop closes every client and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Attach registers client unless the hub has stopped. The lifecycle hears
// about the connection before Attach returns, so frames read right after
// can already refer to it.
func (h *Hub) Attach(client *Client) bool {
	if h.lifecycle != nil {
		h.lifecycle.Connect(client.ID)
	}
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		if h.lifecycle != nil {
			h.lifecycle.Disconnect(client.ID)
		}
		return false
	}
}

// Detach unregisters client unless the hub has stopped.
func (h *Hub) Detach(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// Send queues frame for connID without blocking. A missing connection or a
// full queue drops the frame.
func (h *Hub) Send(connID string, frame []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[connID]
	if !ok {
		return false
	}
	select {
	case client.Send <- frame:
		return true
	default:
		log.Warn().Str("conn_id", connID).Msg("Send queue full, dropping frame")
		return false
	}
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
