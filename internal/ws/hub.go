package ws

import (
	"encoding/json"
	"log"

	"github.com/railpos/railpos/internal/events"
)

// Hub fans change notifications out to every connected UI window. There is a
// single room: all windows of the desktop shell see all events.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
	}
}

// Run consumes the event bus and drives client registration and fanout.
// This should be called as a goroutine: go hub.Run(bus).
func (h *Hub) Run(bus *events.Bus) {
	ch, cancel := bus.Subscribe()
	defer cancel()

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case e, ok := <-ch:
			if !ok {
				return
			}
			message, err := json.Marshal(e)
			if err != nil {
				log.Printf("[WS] marshal event: %v", err)
				continue
			}
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full; drop the connection,
					// the window will reconnect and reload.
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}
