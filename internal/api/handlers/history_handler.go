package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roadrescue/dispatch/internal/api/dto"
	"github.com/roadrescue/dispatch/internal/domain/history"
	apperrors "github.com/roadrescue/dispatch/pkg/errors"
	"github.com/roadrescue/dispatch/pkg/logger"
)

// ListUserHistory handles GET /api/users/:id/service-history.
// The response carries the entries plus an aggregate summary.
func (h *Handlers) ListUserHistory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.Validation("invalid user id", err))
		return
	}

	entries, err := h.Store.ListHistoryByUser(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"summary": history.Summarize(entries),
	})
}

// CreateHistory handles POST /api/service-history
func (h *Handlers) CreateHistory(c *gin.Context) {
	var req dto.CreateHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.Validation("invalid request payload", err))
		return
	}

	completedAt, err := time.Parse(time.RFC3339, req.CompletedAt)
	if err != nil {
		h.respondError(c, apperrors.Validation("completed_at must be an RFC 3339 timestamp", err))
		return
	}

	created, err := h.Store.CreateHistory(c.Request.Context(), history.Draft{
		UserID:      req.UserID,
		MechanicID:  req.MechanicID,
		ServiceType: req.ServiceType,
		Description: req.Description,
		Price:       req.Price,
		Rating:      req.Rating,
		Review:      req.Review,
		CompletedAt: completedAt,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Logger.Info("service history recorded",
		logger.Int("history_id", created.ID),
		logger.Int("user_id", created.UserID),
		logger.Float64("price", created.Price),
	)
	c.JSON(http.StatusCreated, created)
}

// ReviewHistory handles POST /api/service-history/:id/review
func (h *Handlers) ReviewHistory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.Validation("invalid history id", err))
		return
	}

	var req dto.ReviewHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.Validation("invalid request payload", err))
		return
	}

	entry, err := h.Store.ReviewHistory(c.Request.Context(), id, req.Rating, req.Review)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
