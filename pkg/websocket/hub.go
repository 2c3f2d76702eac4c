package websocket

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/roadrescue/dispatch/pkg/logger"
)

// Hub maintains active client connections and fans out dispatch events:
// request status changes and chat messages.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	logger     *logger.Logger
}

// Event represents an outbound WebSocket event
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// NewHub creates a new WebSocket hub
func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("WebSocket client registered",
				logger.String("client_id", client.ID),
				logger.String("party", client.Party),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.logger.Info("WebSocket client unregistered",
					logger.String("client_id", client.ID),
				)
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			// Full lock: a slow client gets evicted here, which
			// mutates the client map.
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- data:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register registers a new client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister unregisters a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast sends an event to every connected client
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast event", logger.Err(err))
		return
	}
	h.broadcast <- data
}

// BroadcastToRequest sends an event to clients subscribed to a request
func (h *Hub) BroadcastToRequest(requestID int, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal request event", logger.Err(err))
		return
	}

	key := strconv.Itoa(requestID)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.IsSubscribed(key) {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Dropping request event for slow client",
					logger.Int("request_id", requestID),
					logger.String("client_id", client.ID),
				)
			}
		}
	}
}

// SendToParty sends an event to every connection for one user or mechanic
func (h *Hub) SendToParty(party string, partyID int, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal event", logger.Err(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.Party == party && client.PartyID == partyID {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Dropping event for slow client",
					logger.String("client_id", client.ID),
				)
			}
		}
	}
}

// ActiveConnections returns the number of connected clients
func (h *Hub) ActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
