package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"asistencia-backend/internal/dashboard"
)

// Hub maintains the open dashboard connections and fans out attendance events
type Hub struct {
	// Registered clients (client ID -> Client)
	clients map[string]*Client

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	// done is closed when Run returns
	done chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop; it returns when ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("✅ [WEBSOCKET] Dashboard connected: %s (%s), %d open", client.ID, client.Viewer, total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
				log.Printf("🔴 [WEBSOCKET] Dashboard disconnected: %s, %d open", client.ID, len(h.clients))
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Client buffer full, disconnect
					close(client.send)
					delete(h.clients, id)
					log.Printf("⚠️ Client buffer full, disconnecting: %s", id)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues a message for every connected dashboard
func (h *Hub) Broadcast(data interface{}) {
	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("❌ Failed to marshal broadcast message: %v", err)
		return
	}
	select {
	case h.broadcast <- b:
	default:
		log.Println("⚠️ Broadcast queue full, dropping message")
	}
}

// Notify pushes a mutation event to every open dashboard so it reloads
func (h *Hub) Notify(_ context.Context, ev dashboard.Event) {
	h.Broadcast(ev)
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
