package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadrescue/dispatch/internal/domain/mechanic"
	"github.com/roadrescue/dispatch/internal/domain/request"
	"github.com/roadrescue/dispatch/internal/domain/user"
	"github.com/roadrescue/dispatch/internal/service/matching"
	"github.com/roadrescue/dispatch/internal/service/pricing"
	"github.com/roadrescue/dispatch/internal/store"
	"github.com/roadrescue/dispatch/pkg/logger"
)

func floatPtr(v float64) *float64 { return &v }

type fixture struct {
	store  *store.MemoryStore
	engine *Engine
	user   *user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewMemoryStore()
	log := logger.Nop()
	engine := NewEngine(s, matching.NewService(s, log), pricing.NewService(pricing.DefaultConfig()), log, nil, Config{
		RadiusMiles: 10,
		AutoAssign:  true,
	})

	u, err := s.CreateUser(context.Background(), user.Draft{
		Username: "john_doe",
		Name:     "John Doe",
		Email:    "john@example.com",
		Phone:    "(555) 987-6543",
	})
	require.NoError(t, err)

	return &fixture{store: s, engine: engine, user: u}
}

func (f *fixture) addMechanic(t *testing.T, availability mechanic.Availability, responseTime int) *mechanic.Mechanic {
	t.Helper()
	m, err := f.store.CreateMechanic(context.Background(), mechanic.Draft{
		Name:         "Sarah Johnson",
		BusinessName: "Sarah's Mobile Repair",
		Latitude:     40.7589,
		Longitude:    -73.9851,
		Services:     []string{"Battery", "Towing"},
		Availability: availability,
		ResponseTime: responseTime,
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) draft(serviceType string) request.Draft {
	return request.Draft{
		UserID:        f.user.ID,
		ServiceType:   serviceType,
		UserLatitude:  floatPtr(40.7580),
		UserLongitude: floatPtr(-73.9855),
		UserAddress:   "123 Main Street, Manhattan, NY",
	}
}

// TestSubmit_AssignsAvailableMechanic tests the happy assignment path
func TestSubmit_AssignsAvailableMechanic(t *testing.T) {
	f := newFixture(t)
	m := f.addMechanic(t, mechanic.Available, 12)

	req, err := f.engine.Submit(context.Background(), f.draft("Battery Jump"))
	require.NoError(t, err)

	assert.Equal(t, request.StatusAssigned, req.Status)
	require.NotNil(t, req.MechanicID)
	assert.Equal(t, m.ID, *req.MechanicID)
	require.NotNil(t, req.EstimatedPrice)
	assert.Equal(t, 55.00, *req.EstimatedPrice)
	require.NotNil(t, req.EstimatedArrival)
	expectedArrival := req.CreatedAt.Add(12 * time.Minute)
	assert.True(t, req.EstimatedArrival.Equal(expectedArrival),
		"Arrival should be creation time plus the mechanic's response time")
}

// TestSubmit_NoAvailableMechanic tests that the request stays pending
func TestSubmit_NoAvailableMechanic(t *testing.T) {
	f := newFixture(t)
	f.addMechanic(t, mechanic.Busy, 25)

	req, err := f.engine.Submit(context.Background(), f.draft("Battery Jump"))
	require.NoError(t, err)

	assert.Equal(t, request.StatusPending, req.Status)
	assert.Nil(t, req.MechanicID)
	assert.Nil(t, req.EstimatedPrice)
	assert.Nil(t, req.EstimatedArrival)
}

// TestSubmit_NoMechanicInRadius tests that distance excludes candidates
func TestSubmit_NoMechanicInRadius(t *testing.T) {
	f := newFixture(t)
	// Boston, far outside the 10 mile radius
	_, err := f.store.CreateMechanic(context.Background(), mechanic.Draft{
		Name:         "Far Away",
		BusinessName: "Boston Towing",
		Latitude:     42.3601,
		Longitude:    -71.0589,
		Services:     []string{"Towing"},
	})
	require.NoError(t, err)

	req, err := f.engine.Submit(context.Background(), f.draft("Towing"))
	require.NoError(t, err)

	assert.Equal(t, request.StatusPending, req.Status)
	assert.Nil(t, req.MechanicID)
}

// TestSubmit_PricingTable tests estimates per service kind
func TestSubmit_PricingTable(t *testing.T) {
	tests := []struct {
		serviceType string
		expected    float64
	}{
		{"Battery Jump", 55.00},
		{"Towing", 95.00},
		{"Tire Change", 65.00},
		{"Lockout", 75.00},
		{"Winch Out", 65.00}, // not in the table, falls back
	}

	for _, tt := range tests {
		t.Run(tt.serviceType, func(t *testing.T) {
			f := newFixture(t)
			f.addMechanic(t, mechanic.Available, 15)

			req, err := f.engine.Submit(context.Background(), f.draft(tt.serviceType))
			require.NoError(t, err)

			require.NotNil(t, req.EstimatedPrice)
			assert.Equal(t, tt.expected, *req.EstimatedPrice)
		})
	}
}

// TestSubmit_ValidationErrors tests that malformed drafts persist nothing
func TestSubmit_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	f.addMechanic(t, mechanic.Available, 15)

	tests := []struct {
		name    string
		mutate  func(*request.Draft)
		wantErr error
	}{
		{
			name:    "missing service type",
			mutate:  func(d *request.Draft) { d.ServiceType = "" },
			wantErr: request.ErrMissingServiceType,
		},
		{
			name:    "missing coordinates",
			mutate:  func(d *request.Draft) { d.UserLatitude = nil },
			wantErr: request.ErrMissingLocation,
		},
		{
			name:    "missing address",
			mutate:  func(d *request.Draft) { d.UserAddress = "" },
			wantErr: request.ErrMissingAddress,
		},
		{
			name:    "invalid priority",
			mutate:  func(d *request.Draft) { d.Priority = "urgent" },
			wantErr: request.ErrInvalidPriority,
		},
		{
			name:    "unknown user",
			mutate:  func(d *request.Draft) { d.UserID = 999 },
			wantErr: request.ErrUnknownUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := f.draft("Towing")
			tt.mutate(&draft)

			_, err := f.engine.Submit(context.Background(), draft)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Nothing was persisted by the failed submissions
	requests, err := f.store.ListRequestsByUser(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

// TestSubmit_PriorityDefault tests that an empty priority becomes normal
func TestSubmit_PriorityDefault(t *testing.T) {
	f := newFixture(t)

	draft := f.draft("Towing")
	draft.Priority = ""
	req, err := f.engine.Submit(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, request.PriorityNormal, req.Priority)

	draft = f.draft("Towing")
	draft.Priority = request.PriorityEmergency
	req, err = f.engine.Submit(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, request.PriorityEmergency, req.Priority)
}

// TestSubmit_IDsStrictlyIncreasing tests that every submission gets a fresh, larger id
func TestSubmit_IDsStrictlyIncreasing(t *testing.T) {
	f := newFixture(t)

	var lastID int
	for i := 0; i < 5; i++ {
		req, err := f.engine.Submit(context.Background(), f.draft("Towing"))
		require.NoError(t, err)
		assert.Greater(t, req.ID, lastID)
		lastID = req.ID
	}
}

// TestSubmit_AvailabilityNotFlipped tests that assignment leaves the mechanic available
func TestSubmit_AvailabilityNotFlipped(t *testing.T) {
	f := newFixture(t)
	m := f.addMechanic(t, mechanic.Available, 15)

	_, err := f.engine.Submit(context.Background(), f.draft("Towing"))
	require.NoError(t, err)

	after, err := f.store.GetMechanic(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, mechanic.Available, after.Availability)
}

// TestSubmit_AutoAssignDisabled tests the feature flag
func TestSubmit_AutoAssignDisabled(t *testing.T) {
	s := store.NewMemoryStore()
	log := logger.Nop()
	engine := NewEngine(s, matching.NewService(s, log), pricing.NewService(pricing.DefaultConfig()), log, nil, Config{
		RadiusMiles: 10,
		AutoAssign:  false,
	})

	u, err := s.CreateUser(context.Background(), user.Draft{
		Username: "jane", Name: "Jane", Email: "jane@example.com", Phone: "(555) 111-2222",
	})
	require.NoError(t, err)

	_, err = s.CreateMechanic(context.Background(), mechanic.Draft{
		Name: "Open Garage", BusinessName: "Open Garage",
		Latitude: 40.7589, Longitude: -73.9851,
		Services: []string{"Towing"},
	})
	require.NoError(t, err)

	req, err := engine.Submit(context.Background(), request.Draft{
		UserID:        u.ID,
		ServiceType:   "Towing",
		UserLatitude:  floatPtr(40.7580),
		UserLongitude: floatPtr(-73.9855),
		UserAddress:   "123 Main Street",
	})
	require.NoError(t, err)

	assert.Equal(t, request.StatusPending, req.Status)
	assert.Nil(t, req.MechanicID)
}

// TestSubmit_ConcurrentAtomicity tests that no observer sees a half-assigned request
func TestSubmit_ConcurrentAtomicity(t *testing.T) {
	f := newFixture(t)
	f.addMechanic(t, mechanic.Available, 12)

	const n = 50
	results := make([]*request.ServiceRequest, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			req, err := f.engine.Submit(context.Background(), f.draft("Battery Jump"))
			assert.NoError(t, err)
			results[idx] = req
		}(i)
	}
	wg.Wait()

	seen := make(map[int]bool)
	for _, req := range results {
		require.NotNil(t, req)
		assert.False(t, seen[req.ID], "Request ids must be unique")
		seen[req.ID] = true

		// mechanicID and assigned status are set together or not at all
		if req.MechanicID != nil {
			assert.Equal(t, request.StatusAssigned, req.Status)
			assert.NotNil(t, req.EstimatedPrice)
			assert.NotNil(t, req.EstimatedArrival)
		} else {
			assert.Equal(t, request.StatusPending, req.Status)
		}
	}
}

// TestSubmit_ScenarioFromMidtown tests the canonical dispatch scenario
func TestSubmit_ScenarioFromMidtown(t *testing.T) {
	// Mechanic at (40.7589, -73.9851), available, 12 minute response.
	// Request from (40.7580, -73.9855), roughly 0.07 miles away.
	f := newFixture(t)
	m := f.addMechanic(t, mechanic.Available, 12)

	req, err := f.engine.Submit(context.Background(), f.draft("Battery Jump"))
	require.NoError(t, err)

	assert.Equal(t, request.StatusAssigned, req.Status)
	assert.Equal(t, m.ID, *req.MechanicID)
	assert.Equal(t, 55.00, *req.EstimatedPrice)
	assert.True(t, req.EstimatedArrival.Equal(req.CreatedAt.Add(12*time.Minute)))
}
