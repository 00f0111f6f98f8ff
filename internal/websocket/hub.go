package websocket

import (
	"sync"
)

// Hub tracks the live client connections so shutdown can close them all.
// Unlike a broadcast hub, events here are per-session: each connection's
// engine notifies only its own client.
type Hub struct {
	mu         sync.Mutex
	clients    map[*Connection]bool
	Register   chan *Connection
	Unregister chan *Connection
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Connection]bool),
		Register:   make(chan *Connection),
		Unregister: make(chan *Connection),
	}
}

// Run is the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case conn, ok := <-h.Register:
			if !ok {
				return
			}
			h.addClient(conn)
		case conn, ok := <-h.Unregister:
			if !ok {
				return
			}
			h.removeClient(conn)
		}
	}
}

// Close shuts down every connection and its engine.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.shutdown()
		delete(h.clients, conn)
	}
}

func (h *Hub) addClient(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
}

func (h *Hub) removeClient(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.clients[conn]; exists {
		delete(h.clients, conn)
		conn.shutdown()
	}
}
