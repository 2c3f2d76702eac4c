package dispatch

import (
	"context"
	"time"

	"github.com/roadrescue/dispatch/internal/domain/request"
	"github.com/roadrescue/dispatch/internal/domain/user"
	"github.com/roadrescue/dispatch/internal/service/matching"
	"github.com/roadrescue/dispatch/internal/service/pricing"
	"github.com/roadrescue/dispatch/internal/store"
	"github.com/roadrescue/dispatch/pkg/logger"
	"github.com/roadrescue/dispatch/pkg/monitoring"
)

// Engine orchestrates request intake: validation, creation, mechanic
// matching and atomic assignment.
type Engine struct {
	store      store.Store
	matcher    *matching.Service
	pricing    *pricing.Service
	logger     *logger.Logger
	monitoring *monitoring.NewRelicApp // nil-safe, may be absent
	config     Config
}

// Config holds dispatch configuration
type Config struct {
	RadiusMiles float64 // search radius for auto-assignment
	AutoAssign  bool    // match a mechanic immediately on submit
}

// NewEngine creates a new dispatch engine
func NewEngine(store store.Store, matcher *matching.Service, pricing *pricing.Service, logger *logger.Logger, nr *monitoring.NewRelicApp, config Config) *Engine {
	if config.RadiusMiles <= 0 {
		config.RadiusMiles = matching.DefaultRadiusMiles
	}
	return &Engine{
		store:      store,
		matcher:    matcher,
		pricing:    pricing,
		logger:     logger,
		monitoring: nr,
		config:     config,
	}
}

// Submit validates a draft, persists it as a pending request and attempts
// auto-assignment. The returned request reflects whatever state the record
// is in after matching: assigned when a candidate was found, otherwise
// still pending. Finding no candidate is not an error.
//
// Assignment deliberately does not flip the mechanic's availability;
// availability is managed externally.
func (e *Engine) Submit(ctx context.Context, draft request.Draft) (*request.ServiceRequest, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	if _, err := e.store.GetUser(ctx, draft.UserID); err != nil {
		if err == user.ErrUserNotFound {
			return nil, request.ErrUnknownUser
		}
		return nil, err
	}

	req, err := e.store.CreateRequest(ctx, draft)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Service request created",
		logger.Int("request_id", req.ID),
		logger.Int("user_id", req.UserID),
		logger.String("service_type", req.ServiceType),
		logger.String("priority", string(req.Priority)),
	)

	if !e.config.AutoAssign {
		return req, nil
	}

	matchStart := time.Now()
	candidate, err := e.matcher.FirstAvailable(ctx, req.UserLatitude, req.UserLongitude, e.config.RadiusMiles)
	e.monitoring.RecordMatchingLatency(float64(time.Since(matchStart).Nanoseconds()) / float64(time.Millisecond))
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		// Stays pending; re-matching is a caller/scheduler concern
		return req, nil
	}

	eta := req.CreatedAt.Add(time.Duration(candidate.ResponseTime) * time.Minute)
	price := e.pricing.Estimate(req.ServiceType)

	assigned, err := e.store.AssignMechanic(ctx, req.ID, candidate.ID, eta, price)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Mechanic assigned",
		logger.Int("request_id", assigned.ID),
		logger.Int("mechanic_id", candidate.ID),
		logger.Float64("estimated_price", price),
		logger.Int("response_time_min", candidate.ResponseTime),
	)

	return assigned, nil
}
