package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roadrescue/dispatch/internal/api/dto"
	"github.com/roadrescue/dispatch/internal/domain/mechanic"
	"github.com/roadrescue/dispatch/pkg/cache"
	apperrors "github.com/roadrescue/dispatch/pkg/errors"
	"github.com/roadrescue/dispatch/pkg/logger"
	"github.com/roadrescue/dispatch/pkg/websocket"
)

// ListMechanics handles GET /api/mechanics
func (h *Handlers) ListMechanics(c *gin.Context) {
	mechanics, err := h.Store.ListMechanics(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mechanics)
}

// GetNearbyMechanics handles GET /api/mechanics/nearby.
// latitude and longitude are required; radius falls back to the
// matcher default.
func (h *Handlers) GetNearbyMechanics(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("latitude"), 64)
	if err != nil {
		h.respondError(c, apperrors.Validation("latitude query parameter is required", err))
		return
	}
	lng, err := strconv.ParseFloat(c.Query("longitude"), 64)
	if err != nil {
		h.respondError(c, apperrors.Validation("longitude query parameter is required", err))
		return
	}

	radius := 0.0
	if raw := c.Query("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			h.respondError(c, apperrors.Validation("radius must be a positive number", err))
			return
		}
	}

	mechanics, err := h.Matcher.FindNearby(c.Request.Context(), lat, lng, radius)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mechanics)
}

// GetMechanic handles GET /api/mechanics/:id
func (h *Handlers) GetMechanic(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.Validation("invalid mechanic id", err))
		return
	}

	m, err := h.Store.GetMechanic(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// CreateMechanic handles POST /api/mechanics
func (h *Handlers) CreateMechanic(c *gin.Context) {
	var req dto.CreateMechanicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.Validation("invalid request payload", err))
		return
	}

	created, err := h.Store.CreateMechanic(c.Request.Context(), mechanic.Draft{
		Name:         req.Name,
		BusinessName: req.BusinessName,
		Phone:        req.Phone,
		Email:        req.Email,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		Address:      req.Address,
		Rating:       req.Rating,
		ReviewCount:  req.ReviewCount,
		Services:     req.Services,
		Availability: mechanic.Availability(req.Availability),
		ResponseTime: req.ResponseTime,
		PriceRange:   req.PriceRange,
		ProfileImage: req.ProfileImage,
		Is24x7:       req.Is24x7,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.mirrorLocation(c, created)
	h.Logger.Info("mechanic onboarded",
		logger.Int("mechanic_id", created.ID),
		logger.String("business", created.BusinessName),
	)
	c.JSON(http.StatusCreated, created)
}

// UpdateMechanicAvailability handles PATCH /api/mechanics/:id/availability
func (h *Handlers) UpdateMechanicAvailability(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.Validation("invalid mechanic id", err))
		return
	}

	var req dto.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.Validation("invalid request payload", err))
		return
	}

	m, err := h.Store.UpdateMechanicAvailability(c.Request.Context(), id, mechanic.Availability(req.Availability))
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.mirrorLocation(c, m)
	if h.Hub != nil {
		h.Hub.Broadcast(websocket.Event{Type: "mechanic_availability_changed", Data: m})
	}
	h.Logger.Info("mechanic availability updated",
		logger.Int("mechanic_id", id),
		logger.String("availability", string(m.Availability)),
	)
	c.JSON(http.StatusOK, m)
}

// ListMechanicRequests handles GET /api/mechanics/:id/requests
func (h *Handlers) ListMechanicRequests(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.Validation("invalid mechanic id", err))
		return
	}

	requests, err := h.Store.ListRequestsByMechanic(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// mirrorLocation pushes the mechanic's position into the Redis geo set
// used by dashboards. Best effort, never fails the request.
func (h *Handlers) mirrorLocation(c *gin.Context, m *mechanic.Mechanic) {
	if h.Redis == nil {
		return
	}
	if err := cache.MirrorMechanicLocation(c.Request.Context(), h.Redis, m.ID, m.Latitude, m.Longitude); err != nil {
		h.Logger.Warn("failed to mirror mechanic location",
			logger.Int("mechanic_id", m.ID),
			logger.Err(err),
		)
	}
}
