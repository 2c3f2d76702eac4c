package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roadrescue/dispatch/internal/api/dto"
	"github.com/roadrescue/dispatch/internal/domain/message"
	apperrors "github.com/roadrescue/dispatch/pkg/errors"
	"github.com/roadrescue/dispatch/pkg/websocket"
)

// CreateMessage handles POST /api/messages
func (h *Handlers) CreateMessage(c *gin.Context) {
	var req dto.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.Validation("invalid request payload", err))
		return
	}

	created, err := h.Store.CreateMessage(c.Request.Context(), message.Draft{
		RequestID:  req.RequestID,
		SenderID:   req.SenderID,
		SenderType: message.SenderType(req.SenderType),
		Body:       req.Message,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	if h.Hub != nil {
		h.Hub.BroadcastToRequest(created.RequestID, websocket.Event{
			Type: "message",
			Data: created,
		})
	}
	c.JSON(http.StatusCreated, created)
}

// ListRequestMessages handles GET /api/service-requests/:id/messages
func (h *Handlers) ListRequestMessages(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.Validation("invalid request id", err))
		return
	}

	messages, err := h.Store.ListMessagesByRequest(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}
