package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roadrescue/dispatch/internal/api/dto"
	"github.com/roadrescue/dispatch/internal/domain/user"
	apperrors "github.com/roadrescue/dispatch/pkg/errors"
	"github.com/roadrescue/dispatch/pkg/logger"
)

// CreateUser handles POST /api/users
func (h *Handlers) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.Validation("invalid request payload", err))
		return
	}

	created, err := h.Store.CreateUser(c.Request.Context(), user.Draft{
		Username:  req.Username,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Logger.Info("user created",
		logger.Int("user_id", created.ID),
		logger.String("username", created.Username),
	)
	c.JSON(http.StatusCreated, created)
}

// GetUser handles GET /api/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.Validation("invalid user id", err))
		return
	}

	u, err := h.Store.GetUser(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// GetUserByUsername handles GET /api/users/username/:username
func (h *Handlers) GetUserByUsername(c *gin.Context) {
	u, err := h.Store.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// UpdateUserLocation handles PATCH /api/users/:id/location
func (h *Handlers) UpdateUserLocation(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.Validation("invalid user id", err))
		return
	}

	var req dto.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.Validation("invalid request payload", err))
		return
	}

	u, err := h.Store.UpdateUserLocation(c.Request.Context(), id, *req.Latitude, *req.Longitude, req.Address)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Logger.Debug("user location updated",
		logger.Int("user_id", id),
		logger.Float64("lat", *req.Latitude),
		logger.Float64("lng", *req.Longitude),
	)
	c.JSON(http.StatusOK, u)
}
