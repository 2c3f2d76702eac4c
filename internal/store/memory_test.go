package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadrescue/dispatch/internal/domain/mechanic"
	"github.com/roadrescue/dispatch/internal/domain/message"
	"github.com/roadrescue/dispatch/internal/domain/request"
	"github.com/roadrescue/dispatch/internal/domain/user"
)

func messageDraft(requestID, senderID int, body string) message.Draft {
	return message.Draft{
		RequestID:  requestID,
		SenderID:   senderID,
		SenderType: message.SenderUser,
		Body:       body,
	}
}

func newTestUser(t *testing.T, s *MemoryStore, username string) *user.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), user.Draft{
		Username: username,
		Name:     "Test User",
		Email:    username + "@example.com",
		Phone:    "(555) 000-0000",
	})
	require.NoError(t, err)
	return u
}

func newTestRequest(t *testing.T, s *MemoryStore, userID int) *request.ServiceRequest {
	t.Helper()
	r, err := s.CreateRequest(context.Background(), request.Draft{
		UserID:        userID,
		ServiceType:   "Towing",
		UserLatitude:  floatPtr(40.7580),
		UserLongitude: floatPtr(-73.9855),
		UserAddress:   "123 Main Street",
	})
	require.NoError(t, err)
	return r
}

// TestCreateUser_MonotonicIDs tests that ids increase strictly from 1
func TestCreateUser_MonotonicIDs(t *testing.T) {
	s := NewMemoryStore()

	first := newTestUser(t, s, "first")
	second := newTestUser(t, s, "second")
	third := newTestUser(t, s, "third")

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, 3, third.ID)
}

// TestIDCounters_IndependentPerType tests that each entity type has its own sequence
func TestIDCounters_IndependentPerType(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	u := newTestUser(t, s, "driver")
	m, err := s.CreateMechanic(ctx, mechanic.Draft{
		Name:         "Sarah Johnson",
		BusinessName: "Sarah's Mobile Repair",
		Latitude:     40.7589,
		Longitude:    -73.9851,
		Services:     []string{"Battery"},
	})
	require.NoError(t, err)
	r := newTestRequest(t, s, u.ID)

	assert.Equal(t, 1, u.ID)
	assert.Equal(t, 1, m.ID)
	assert.Equal(t, 1, r.ID)
}

// TestGetUser_NotFound tests the not-found path
func TestGetUser_NotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.GetUser(context.Background(), 42)

	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

// TestGetUserByUsername tests username lookup
func TestGetUserByUsername(t *testing.T) {
	s := NewMemoryStore()
	created := newTestUser(t, s, "john_doe")

	found, err := s.GetUserByUsername(context.Background(), "john_doe")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = s.GetUserByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

// TestUpdateUserLocation tests the explicit location-update operation
func TestUpdateUserLocation(t *testing.T) {
	s := NewMemoryStore()
	u := newTestUser(t, s, "mover")
	require.False(t, u.HasLocation())

	updated, err := s.UpdateUserLocation(context.Background(), u.ID, 40.7580, -73.9855, "123 Main Street")
	require.NoError(t, err)

	assert.True(t, updated.HasLocation())
	assert.Equal(t, 40.7580, *updated.Latitude)
	assert.Equal(t, -73.9855, *updated.Longitude)
	assert.Equal(t, "123 Main Street", *updated.Address)
}

// TestMechanicDraft_Defaults tests availability and response-time defaults
func TestMechanicDraft_Defaults(t *testing.T) {
	s := NewMemoryStore()

	m, err := s.CreateMechanic(context.Background(), mechanic.Draft{
		Name:         "David Chen",
		BusinessName: "Roadside Heroes",
		Latitude:     40.7614,
		Longitude:    -73.9776,
		Services:     []string{"Towing"},
	})
	require.NoError(t, err)

	assert.Equal(t, mechanic.Available, m.Availability)
	assert.Equal(t, mechanic.DefaultResponseTime, m.ResponseTime)
	assert.Zero(t, m.Rating)
	assert.Zero(t, m.ReviewCount)
}

// TestCreateMechanic_RequiresServices tests the non-empty services invariant
func TestCreateMechanic_RequiresServices(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.CreateMechanic(context.Background(), mechanic.Draft{
		Name:         "No Services",
		BusinessName: "Empty Garage",
		Latitude:     40.0,
		Longitude:    -73.0,
	})

	assert.ErrorIs(t, err, mechanic.ErrMissingServices)
}

// TestCreateMechanic_CarriesReputation tests that rating and review count survive onboarding
func TestCreateMechanic_CarriesReputation(t *testing.T) {
	s := NewMemoryStore()

	m, err := s.CreateMechanic(context.Background(), mechanic.Draft{
		Name:         "Established Shop",
		BusinessName: "Established Shop LLC",
		Latitude:     40.75,
		Longitude:    -73.98,
		Rating:       4.6,
		ReviewCount:  42,
		Services:     []string{"Towing"},
	})
	require.NoError(t, err)

	assert.Equal(t, 4.6, m.Rating)
	assert.Equal(t, 42, m.ReviewCount)

	_, err = s.CreateMechanic(context.Background(), mechanic.Draft{
		Name:         "Bad Rating",
		BusinessName: "Bad Rating LLC",
		Latitude:     40.75,
		Longitude:    -73.98,
		Rating:       5.1,
		Services:     []string{"Towing"},
	})
	assert.ErrorIs(t, err, mechanic.ErrInvalidRating)
}

// TestListMechanics_InsertionOrder tests that listing preserves creation order
func TestListMechanics_InsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	names := []string{"First Garage", "Second Garage", "Third Garage"}
	for _, name := range names {
		_, err := s.CreateMechanic(ctx, mechanic.Draft{
			Name:         name,
			BusinessName: name,
			Latitude:     40.75,
			Longitude:    -73.98,
			Services:     []string{"Battery"},
		})
		require.NoError(t, err)
	}

	listed, err := s.ListMechanics(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)

	for i, m := range listed {
		assert.Equal(t, names[i], m.BusinessName)
		assert.Equal(t, i+1, m.ID)
	}
}

// TestCreateRequest_Defaults tests the pending initial state
func TestCreateRequest_Defaults(t *testing.T) {
	s := NewMemoryStore()
	u := newTestUser(t, s, "stranded")

	r := newTestRequest(t, s, u.ID)

	assert.Equal(t, request.StatusPending, r.Status)
	assert.Equal(t, request.PriorityNormal, r.Priority)
	assert.Nil(t, r.MechanicID)
	assert.Nil(t, r.EstimatedPrice)
	assert.Nil(t, r.EstimatedArrival)
	assert.Nil(t, r.CompletedAt)
	assert.False(t, r.CreatedAt.IsZero())
	assert.Equal(t, r.CreatedAt, r.UpdatedAt)
}

// TestAssignMechanic_SingleMutation tests that assignment sets everything together
func TestAssignMechanic_SingleMutation(t *testing.T) {
	s := NewMemoryStore()
	u := newTestUser(t, s, "stranded")
	r := newTestRequest(t, s, u.ID)

	eta := time.Now().Add(12 * time.Minute)
	assigned, err := s.AssignMechanic(context.Background(), r.ID, 7, eta, 95.00)
	require.NoError(t, err)

	assert.Equal(t, request.StatusAssigned, assigned.Status)
	require.NotNil(t, assigned.MechanicID)
	assert.Equal(t, 7, *assigned.MechanicID)
	require.NotNil(t, assigned.EstimatedPrice)
	assert.Equal(t, 95.00, *assigned.EstimatedPrice)
	require.NotNil(t, assigned.EstimatedArrival)
	assert.True(t, assigned.EstimatedArrival.Equal(eta))
	assert.True(t, assigned.UpdatedAt.After(r.UpdatedAt) || assigned.UpdatedAt.Equal(r.UpdatedAt))
}

// TestUpdateRequestStatus_MechanicFallback tests that a nil mechanic id preserves the assignment
func TestUpdateRequestStatus_MechanicFallback(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u := newTestUser(t, s, "stranded")
	r := newTestRequest(t, s, u.ID)

	_, err := s.AssignMechanic(ctx, r.ID, 3, time.Now().Add(15*time.Minute), 65.00)
	require.NoError(t, err)

	updated, err := s.UpdateRequestStatus(ctx, r.ID, request.StatusInProgress, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.MechanicID)
	assert.Equal(t, 3, *updated.MechanicID)

	// Supplying a mechanic id overwrites the existing one
	updated, err = s.UpdateRequestStatus(ctx, r.ID, request.StatusInProgress, intPtr(9))
	require.NoError(t, err)
	assert.Equal(t, 9, *updated.MechanicID)
}

// TestUpdateRequestStatus_CompletedAtOnce tests that CompletedAt is stamped once
func TestUpdateRequestStatus_CompletedAtOnce(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u := newTestUser(t, s, "stranded")
	r := newTestRequest(t, s, u.ID)

	completed, err := s.UpdateRequestStatus(ctx, r.ID, request.StatusCompleted, nil)
	require.NoError(t, err)
	require.NotNil(t, completed.CompletedAt)
	first := *completed.CompletedAt

	_, err = s.UpdateRequestStatus(ctx, r.ID, request.StatusCompleted, nil)
	assert.ErrorIs(t, err, request.ErrAlreadyCompleted)

	kept, err := s.GetRequest(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, kept.CompletedAt.Equal(first), "CompletedAt should not move on re-entry")
}

// TestUpdateRequestStatus_TerminalGuard tests that terminal requests reject further transitions
func TestUpdateRequestStatus_TerminalGuard(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u := newTestUser(t, s, "stranded")
	r := newTestRequest(t, s, u.ID)

	_, err := s.UpdateRequestStatus(ctx, r.ID, request.StatusCancelled, nil)
	require.NoError(t, err)

	_, err = s.UpdateRequestStatus(ctx, r.ID, request.StatusAssigned, nil)
	assert.ErrorIs(t, err, request.ErrAlreadyTerminal)
	_, err = s.UpdateRequestStatus(ctx, r.ID, request.StatusCompleted, nil)
	assert.ErrorIs(t, err, request.ErrAlreadyTerminal)
}

// TestUpdateRequestStatus_NotFound tests the missing-request path
func TestUpdateRequestStatus_NotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.UpdateRequestStatus(context.Background(), 404, request.StatusCancelled, nil)

	assert.ErrorIs(t, err, request.ErrRequestNotFound)
}

// TestConcurrentStatusUpdates_NoPartialState tests per-id atomicity under contention
func TestConcurrentStatusUpdates_NoPartialState(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u := newTestUser(t, s, "stranded")
	r := newTestRequest(t, s, u.ID)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(mid int) {
			defer wg.Done()
			_, err := s.AssignMechanic(ctx, r.ID, mid, time.Now().Add(10*time.Minute), 55.00)
			assert.NoError(t, err)
		}(i + 1)
	}
	wg.Wait()

	final, err := s.GetRequest(ctx, r.ID)
	require.NoError(t, err)

	// Whichever writer won, mechanic and status must agree
	assert.Equal(t, request.StatusAssigned, final.Status)
	require.NotNil(t, final.MechanicID)
	assert.NotNil(t, final.EstimatedPrice)
	assert.NotNil(t, final.EstimatedArrival)
}

// TestReviewHistory_AppendOnce tests that rating/review can be appended exactly once
func TestReviewHistory_AppendOnce(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, Seed(ctx, s))

	entries, err := s.ListHistoryByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Seeded entries already carry a rating
	_, err = s.ReviewHistory(ctx, entries[0].ID, 3, "changed my mind")
	assert.Error(t, err)
}

// TestCreateMessage_RequiresRequest tests that messages are scoped to a real request
func TestCreateMessage_RequiresRequest(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u := newTestUser(t, s, "chatter")
	r := newTestRequest(t, s, u.ID)

	m, err := s.CreateMessage(ctx, messageDraft(r.ID, u.ID, "On my way"))
	require.NoError(t, err)
	assert.Equal(t, 1, m.ID)

	_, err = s.CreateMessage(ctx, messageDraft(999, u.ID, "lost"))
	assert.ErrorIs(t, err, request.ErrRequestNotFound)

	listed, err := s.ListMessagesByRequest(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "On my way", listed[0].Body)
}

// TestSeed tests the demo dataset shape
func TestSeed(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, Seed(ctx, s))

	mechanics, err := s.ListMechanics(ctx)
	require.NoError(t, err)
	assert.Len(t, mechanics, 3)
	assert.Equal(t, "Sarah's Mobile Repair", mechanics[0].BusinessName)
	assert.Equal(t, 12, mechanics[0].ResponseTime)
	assert.Equal(t, 4.9, mechanics[0].Rating)
	assert.Equal(t, 127, mechanics[0].ReviewCount)
	assert.Equal(t, 4.7, mechanics[1].Rating)
	assert.Equal(t, 89, mechanics[1].ReviewCount)
	assert.Equal(t, 4.8, mechanics[2].Rating)
	assert.Equal(t, 156, mechanics[2].ReviewCount)

	john, err := s.GetUserByUsername(ctx, "john_doe")
	require.NoError(t, err)
	assert.Equal(t, 1, john.ID)
}
