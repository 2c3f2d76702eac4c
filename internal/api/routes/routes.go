package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/roadrescue/dispatch/internal/api/handlers"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, nrApp *newrelic.Application) {
	// Add New Relic middleware if enabled
	if nrApp != nil {
		r.Use(nrgin.Middleware(nrApp))
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	api := r.Group("/api")
	{
		// WebSocket connection
		api.GET("/ws", h.HandleWebSocket)

		users := api.Group("/users")
		{
			users.POST("", h.CreateUser)
			users.GET("/:id", h.GetUser)
			users.GET("/username/:username", h.GetUserByUsername)
			users.PATCH("/:id/location", h.UpdateUserLocation)
			users.GET("/:id/service-requests", h.ListUserRequests)
			users.GET("/:id/service-history", h.ListUserHistory)
		}

		mechanics := api.Group("/mechanics")
		{
			mechanics.GET("", h.ListMechanics)
			mechanics.POST("", h.CreateMechanic)
			mechanics.GET("/nearby", h.GetNearbyMechanics)
			mechanics.GET("/:id", h.GetMechanic)
			mechanics.PATCH("/:id/availability", h.UpdateMechanicAvailability)
			mechanics.GET("/:id/requests", h.ListMechanicRequests)
		}

		requests := api.Group("/service-requests")
		{
			requests.POST("", h.CreateServiceRequest)
			requests.GET("/:id", h.GetServiceRequest)
			requests.PATCH("/:id/status", h.UpdateRequestStatus)
			requests.GET("/:id/messages", h.ListRequestMessages)
		}

		histories := api.Group("/service-history")
		{
			histories.POST("", h.CreateHistory)
			histories.POST("/:id/review", h.ReviewHistory)
		}

		api.POST("/messages", h.CreateMessage)
	}
}
