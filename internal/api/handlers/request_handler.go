package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roadrescue/dispatch/internal/api/dto"
	"github.com/roadrescue/dispatch/internal/domain/request"
	"github.com/roadrescue/dispatch/pkg/cache"
	apperrors "github.com/roadrescue/dispatch/pkg/errors"
	"github.com/roadrescue/dispatch/pkg/logger"
	"github.com/roadrescue/dispatch/pkg/websocket"
)

// CreateServiceRequest handles POST /api/service-requests. An optional
// Idempotency-Key header deduplicates retried submissions: a replayed
// key returns the originally created request instead of a new one.
func (h *Handlers) CreateServiceRequest(c *gin.Context) {
	var req dto.CreateServiceRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.Validation("invalid request payload", err))
		return
	}

	ctx := c.Request.Context()
	idemKey := c.GetHeader("Idempotency-Key")
	if idemKey != "" && h.Redis != nil {
		reserved, err := cache.ReserveIdempotencyKey(ctx, h.Redis, idemKey, h.IdempotencyTTL)
		if err != nil {
			h.Logger.Warn("idempotency reservation failed, proceeding without", logger.Err(err))
		} else if !reserved {
			existingID, err := cache.LookupIdempotentRequest(ctx, h.Redis, idemKey)
			if err == nil && existingID > 0 {
				if existing, err := h.Store.GetRequest(ctx, existingID); err == nil {
					c.JSON(http.StatusOK, existing)
					return
				}
			}
			h.respondError(c, apperrors.Conflict("request with this idempotency key is still in flight", nil))
			return
		}
	}

	created, err := h.Engine.Submit(ctx, request.Draft{
		UserID:        req.UserID,
		ServiceType:   req.ServiceType,
		Description:   req.Description,
		Priority:      request.Priority(req.Priority),
		UserLatitude:  req.UserLatitude,
		UserLongitude: req.UserLongitude,
		UserAddress:   req.UserAddress,
	})
	if err != nil {
		if idemKey != "" && h.Redis != nil {
			if relErr := cache.ReleaseIdempotencyKey(ctx, h.Redis, idemKey); relErr != nil {
				h.Logger.Warn("failed to release idempotency key", logger.Err(relErr))
			}
		}
		h.respondError(c, err)
		return
	}

	if idemKey != "" && h.Redis != nil {
		if err := cache.RecordIdempotentRequest(ctx, h.Redis, idemKey, created.ID, h.IdempotencyTTL); err != nil {
			h.Logger.Warn("failed to record idempotent request", logger.Err(err))
		}
	}

	h.Monitoring.RecordRequestSubmitted(created.ServiceType, string(created.Priority), created.MechanicID != nil)
	if created.MechanicID != nil && created.EstimatedPrice != nil {
		h.Monitoring.RecordAssignment(created.ID, *created.MechanicID, *created.EstimatedPrice)
	}

	h.broadcastRequest(created, "request_created")
	c.JSON(http.StatusCreated, created)
}

// GetServiceRequest handles GET /api/service-requests/:id
func (h *Handlers) GetServiceRequest(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.Validation("invalid request id", err))
		return
	}

	sr, err := h.Store.GetRequest(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sr)
}

// ListUserRequests handles GET /api/users/:id/service-requests
func (h *Handlers) ListUserRequests(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.Validation("invalid user id", err))
		return
	}

	requests, err := h.Store.ListRequestsByUser(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// UpdateRequestStatus handles PATCH /api/service-requests/:id/status
func (h *Handlers) UpdateRequestStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.Validation("invalid request id", err))
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.Validation("invalid request payload", err))
		return
	}

	before, err := h.Store.GetRequest(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	updated, err := h.Lifecycle.Transition(c.Request.Context(), id, request.Status(req.Status), req.MechanicID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Monitoring.RecordStatusTransition(id, string(before.Status), string(updated.Status))
	h.broadcastRequest(updated, "request_status_changed")
	c.JSON(http.StatusOK, updated)
}

// broadcastRequest notifies subscribers and both parties of a request change
func (h *Handlers) broadcastRequest(sr *request.ServiceRequest, eventType string) {
	if h.Hub == nil {
		return
	}
	event := websocket.Event{Type: eventType, Data: sr}
	h.Hub.BroadcastToRequest(sr.ID, event)
	h.Hub.SendToParty("user", sr.UserID, event)
	if sr.MechanicID != nil {
		h.Hub.SendToParty("mechanic", *sr.MechanicID, event)
	}
}
