package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roadrescue/dispatch/internal/domain/history"
	"github.com/roadrescue/dispatch/internal/domain/mechanic"
	"github.com/roadrescue/dispatch/internal/domain/message"
	"github.com/roadrescue/dispatch/internal/domain/request"
	"github.com/roadrescue/dispatch/internal/domain/user"
	apperrors "github.com/roadrescue/dispatch/pkg/errors"
)

func TestToAppError_SentinelStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"user not found", user.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"mechanic not found", mechanic.ErrMechanicNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"request not found", request.ErrRequestNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"history not found", history.ErrHistoryNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"already completed", request.ErrAlreadyCompleted, http.StatusConflict, "CONFLICT"},
		{"already terminal", request.ErrAlreadyTerminal, http.StatusConflict, "CONFLICT"},
		{"already reviewed", history.ErrAlreadyReviewed, http.StatusConflict, "CONFLICT"},
		{"missing address", request.ErrMissingAddress, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown user", request.ErrUnknownUser, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid priority", request.ErrInvalidPriority, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"illegal transition", request.ErrIllegalTransition, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"missing services", mechanic.ErrMissingServices, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid rating", history.ErrInvalidRating, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"empty message body", message.ErrEmptyBody, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := toAppError(tt.err)
			assert.Equal(t, tt.status, appErr.Status)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestToAppError_WrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("loading request: %w", request.ErrRequestNotFound)

	appErr := toAppError(wrapped)

	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestToAppError_PassesThroughTypedErrors(t *testing.T) {
	typed := apperrors.Validation("lat query parameter is required", nil)

	appErr := toAppError(typed)

	assert.Same(t, typed, appErr)
}

func TestToAppError_UnknownErrorIsInternal(t *testing.T) {
	appErr := toAppError(fmt.Errorf("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
}
