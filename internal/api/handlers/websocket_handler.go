package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"

	"github.com/roadrescue/dispatch/pkg/logger"
	"github.com/roadrescue/dispatch/pkg/websocket"
)

// HandleWebSocket handles GET /api/ws. Clients identify themselves with
// party (user, mechanic or dashboard) and party_id query parameters,
// then subscribe to individual requests over the socket.
func (h *Handlers) HandleWebSocket(c *gin.Context) {
	if h.Hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "real-time updates are disabled"})
		return
	}

	upgrader := gorilla.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow all origins in development
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Error("failed to upgrade to WebSocket", logger.Err(err))
		return
	}

	party := c.Query("party")
	partyID, err := strconv.Atoi(c.Query("party_id"))
	if party == "" || err != nil {
		h.Logger.Warn("missing party or party_id in WebSocket connection")
		conn.Close()
		return
	}

	client := websocket.NewClient(h.Hub, conn, party, partyID, h.Logger)
	h.Hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
