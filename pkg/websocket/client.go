package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/roadrescue/dispatch/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client represents one WebSocket connection. Party is "user",
// "mechanic" or "dashboard"; PartyID is the entity id on that side.
type Client struct {
	ID            string
	Party         string
	PartyID       int
	Hub           *Hub
	Conn          *websocket.Conn
	Send          chan []byte
	subscriptions map[string]bool // request ids this client follows
	mu            sync.RWMutex
	logger        *logger.Logger
}

// inbound is a message from the client
type inbound struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, conn *websocket.Conn, party string, partyID int, logger *logger.Logger) *Client {
	return &Client{
		ID:            uuid.NewString(),
		Party:         party,
		PartyID:       partyID,
		Hub:           hub,
		Conn:          conn,
		Send:          make(chan []byte, 256),
		subscriptions: make(map[string]bool),
		logger:        logger,
	}
}

// ReadPump pumps messages from the connection to the hub
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket read error",
					logger.Err(err),
					logger.String("client_id", c.ID),
				)
			}
			break
		}

		c.handleMessage(data)
	}
}

// WritePump pumps events from the hub to the connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(data)

			// Flush any queued events in the same frame
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Error("Failed to unmarshal client message",
			logger.Err(err),
			logger.String("client_id", c.ID),
		)
		return
	}

	switch msg.Type {
	case "subscribe":
		c.Subscribe(msg.RequestID)
	case "unsubscribe":
		c.Unsubscribe(msg.RequestID)
	case "ping":
		c.SendEvent(Event{Type: "pong"})
	default:
		c.logger.Warn("Unknown message type",
			logger.String("type", msg.Type),
			logger.String("client_id", c.ID),
		)
	}
}

// Subscribe subscribes the client to a request's events
func (c *Client) Subscribe(requestID string) {
	if requestID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions[requestID] = true
}

// Unsubscribe stops a request subscription
func (c *Client) Unsubscribe(requestID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscriptions, requestID)
}

// IsSubscribed checks whether the client follows a request
func (c *Client) IsSubscribed(requestID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subscriptions[requestID]
}

// SendEvent marshals and queues one event for this client
func (c *Client) SendEvent(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("Failed to marshal event",
			logger.Err(err),
			logger.String("client_id", c.ID),
		)
		return
	}

	select {
	case c.Send <- data:
	default:
		c.logger.Warn("Client send buffer full",
			logger.String("client_id", c.ID),
		)
	}
}
