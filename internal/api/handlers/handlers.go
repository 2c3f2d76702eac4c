package handlers

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roadrescue/dispatch/internal/service/dispatch"
	"github.com/roadrescue/dispatch/internal/service/lifecycle"
	"github.com/roadrescue/dispatch/internal/service/matching"
	"github.com/roadrescue/dispatch/internal/store"
	"github.com/roadrescue/dispatch/pkg/logger"
	"github.com/roadrescue/dispatch/pkg/monitoring"
	"github.com/roadrescue/dispatch/pkg/websocket"
)

// Handlers holds all handler dependencies
type Handlers struct {
	Store          store.Store
	Engine         *dispatch.Engine
	Lifecycle      *lifecycle.Service
	Matcher        *matching.Service
	Redis          *redis.Client // nil when caching is disabled
	Hub            *websocket.Hub
	Logger         *logger.Logger
	Monitoring     *monitoring.NewRelicApp
	IdempotencyTTL time.Duration
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	st store.Store,
	engine *dispatch.Engine,
	lc *lifecycle.Service,
	matcher *matching.Service,
	redisClient *redis.Client,
	hub *websocket.Hub,
	log *logger.Logger,
	nr *monitoring.NewRelicApp,
	idempotencyTTL time.Duration,
) *Handlers {
	return &Handlers{
		Store:          st,
		Engine:         engine,
		Lifecycle:      lc,
		Matcher:        matcher,
		Redis:          redisClient,
		Hub:            hub,
		Logger:         log,
		Monitoring:     nr,
		IdempotencyTTL: idempotencyTTL,
	}
}
