package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/roadrescue/dispatch/internal/api/dto"
	"github.com/roadrescue/dispatch/internal/domain/history"
	"github.com/roadrescue/dispatch/internal/domain/mechanic"
	"github.com/roadrescue/dispatch/internal/domain/message"
	"github.com/roadrescue/dispatch/internal/domain/request"
	"github.com/roadrescue/dispatch/internal/domain/user"
	apperrors "github.com/roadrescue/dispatch/pkg/errors"
	"github.com/roadrescue/dispatch/pkg/logger"
)

var notFoundErrors = []error{
	user.ErrUserNotFound,
	mechanic.ErrMechanicNotFound,
	request.ErrRequestNotFound,
	history.ErrHistoryNotFound,
}

var conflictErrors = []error{
	request.ErrAlreadyCompleted,
	request.ErrAlreadyTerminal,
	history.ErrAlreadyReviewed,
}

var validationErrors = []error{
	user.ErrMissingUsername,
	user.ErrMissingName,
	user.ErrMissingEmail,
	user.ErrMissingPhone,
	mechanic.ErrInvalidAvailability,
	mechanic.ErrMissingName,
	mechanic.ErrMissingBusinessName,
	mechanic.ErrMissingServices,
	mechanic.ErrInvalidResponseTime,
	mechanic.ErrInvalidRating,
	mechanic.ErrInvalidReviewCount,
	request.ErrUnknownUser,
	request.ErrMissingServiceType,
	request.ErrMissingLocation,
	request.ErrMissingAddress,
	request.ErrInvalidStatus,
	request.ErrInvalidPriority,
	request.ErrIllegalTransition,
	history.ErrInvalidRating,
	history.ErrNegativePrice,
	history.ErrMissingCompletedAt,
	message.ErrInvalidSenderType,
	message.ErrEmptyBody,
}

// toAppError maps domain sentinel errors onto boundary errors with an
// HTTP status. Sentinels are matched first; GetAppError then passes
// through already-typed errors and wraps anything unrecognized as a 500.
func toAppError(err error) *apperrors.AppError {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return apperrors.NotFound(err.Error(), err)
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return apperrors.Conflict(err.Error(), err)
		}
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return apperrors.Validation(err.Error(), err)
		}
	}
	return apperrors.GetAppError(err)
}

// respondError writes the error envelope for a failed operation
func (h *Handlers) respondError(c *gin.Context, err error) {
	appErr := toAppError(err)
	if appErr.Status >= 500 {
		h.Logger.Error("request failed",
			logger.String("path", c.FullPath()),
			logger.Err(err),
		)
	}
	c.JSON(appErr.Status, dto.ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
	})
}
