package matching

import (
	"context"

	"github.com/roadrescue/dispatch/internal/domain/mechanic"
	"github.com/roadrescue/dispatch/internal/store"
	"github.com/roadrescue/dispatch/pkg/geo"
	"github.com/roadrescue/dispatch/pkg/logger"
)

// DefaultRadiusMiles is the search radius used when the caller does not
// supply one.
const DefaultRadiusMiles = 10.0

// Service finds mechanics near a breakdown location
type Service struct {
	store  store.Store
	logger *logger.Logger
}

// NewService creates a new matching service
func NewService(store store.Store, logger *logger.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// FindNearby returns every mechanic within radiusMiles of the given
// coordinates, in the store's insertion order. No distance sort is
// applied: dispatch picks the first eligible candidate, not the closest.
func (s *Service) FindNearby(ctx context.Context, lat, lng, radiusMiles float64) ([]*mechanic.Mechanic, error) {
	if radiusMiles <= 0 {
		radiusMiles = DefaultRadiusMiles
	}

	all, err := s.store.ListMechanics(ctx)
	if err != nil {
		return nil, err
	}

	nearby := make([]*mechanic.Mechanic, 0, len(all))
	for _, m := range all {
		if geo.Distance(lat, lng, m.Latitude, m.Longitude) <= radiusMiles {
			nearby = append(nearby, m)
		}
	}
	return nearby, nil
}

// FirstAvailable returns the first nearby mechanic whose availability is
// "available", or nil if no candidate qualifies. A nil result is a normal
// outcome, not an error: the request simply stays pending.
func (s *Service) FirstAvailable(ctx context.Context, lat, lng, radiusMiles float64) (*mechanic.Mechanic, error) {
	nearby, err := s.FindNearby(ctx, lat, lng, radiusMiles)
	if err != nil {
		return nil, err
	}

	for _, m := range nearby {
		if m.IsAvailable() {
			return m, nil
		}
	}

	s.logger.Info("No available mechanic in radius",
		logger.Float64("latitude", lat),
		logger.Float64("longitude", lng),
		logger.Float64("radius_miles", radiusMiles),
		logger.Int("nearby", len(nearby)),
	)
	return nil, nil
}
