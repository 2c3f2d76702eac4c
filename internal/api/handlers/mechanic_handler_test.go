package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadrescue/dispatch/internal/domain/mechanic"
	"github.com/roadrescue/dispatch/internal/service/matching"
	"github.com/roadrescue/dispatch/internal/store"
	"github.com/roadrescue/dispatch/pkg/logger"
)

func newTestRouter(t *testing.T) (*gin.Engine, store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := store.NewMemoryStore()
	log := logger.Nop()
	h := NewHandlers(s, nil, nil, matching.NewService(s, log), nil, nil, log, nil, 0)

	r := gin.New()
	r.GET("/api/mechanics/nearby", h.GetNearbyMechanics)
	r.GET("/api/mechanics/:id", h.GetMechanic)
	return r, s
}

func TestGetNearbyMechanics_QueryParams(t *testing.T) {
	r, s := newTestRouter(t)

	_, err := s.CreateMechanic(context.Background(), mechanic.Draft{
		Name:         "Sarah Johnson",
		BusinessName: "Sarah's Mobile Repair",
		Latitude:     40.7589,
		Longitude:    -73.9851,
		Services:     []string{"Battery"},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/mechanics/nearby?latitude=40.7580&longitude=-73.9855", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got []mechanic.Mechanic
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Sarah's Mobile Repair", got[0].BusinessName)
}

func TestGetNearbyMechanics_MissingCoordinates(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/mechanics/nearby?latitude=40.7580", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "longitude")
}

func TestGetMechanic_NotFoundStatus(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/mechanics/99", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}
