package store

import (
	"context"
	"time"

	"github.com/roadrescue/dispatch/internal/domain/history"
	"github.com/roadrescue/dispatch/internal/domain/mechanic"
	"github.com/roadrescue/dispatch/internal/domain/message"
	"github.com/roadrescue/dispatch/internal/domain/request"
	"github.com/roadrescue/dispatch/internal/domain/user"
)

// Store is the authoritative repository for every entity. Ids are strictly
// increasing integers starting at 1, allocated per entity type and never
// reused. List operations preserve insertion order. Implementations must
// make every read-modify-write atomic with respect to a single entity id.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, draft user.Draft) (*user.User, error)
	GetUser(ctx context.Context, id int) (*user.User, error)
	GetUserByUsername(ctx context.Context, username string) (*user.User, error)
	UpdateUserLocation(ctx context.Context, id int, lat, lng float64, address string) (*user.User, error)

	// Mechanic operations
	CreateMechanic(ctx context.Context, draft mechanic.Draft) (*mechanic.Mechanic, error)
	GetMechanic(ctx context.Context, id int) (*mechanic.Mechanic, error)
	ListMechanics(ctx context.Context) ([]*mechanic.Mechanic, error)
	UpdateMechanicAvailability(ctx context.Context, id int, availability mechanic.Availability) (*mechanic.Mechanic, error)

	// Service request operations. Requests are append-only: there is no
	// delete, and every mutation refreshes UpdatedAt.
	CreateRequest(ctx context.Context, draft request.Draft) (*request.ServiceRequest, error)
	GetRequest(ctx context.Context, id int) (*request.ServiceRequest, error)
	ListRequestsByUser(ctx context.Context, userID int) ([]*request.ServiceRequest, error)
	ListRequestsByMechanic(ctx context.Context, mechanicID int) ([]*request.ServiceRequest, error)

	// AssignMechanic binds a mechanic to a request in one atomic mutation:
	// mechanic id, assigned status, arrival estimate and price estimate
	// become visible together or not at all.
	AssignMechanic(ctx context.Context, requestID, mechanicID int, estimatedArrival time.Time, estimatedPrice float64) (*request.ServiceRequest, error)

	// UpdateRequestStatus moves a request to a new status. A non-nil
	// mechanicID overwrites the current assignment; nil preserves it.
	// Entering completed stamps CompletedAt. Requests already in a
	// terminal status are rejected atomically with ErrAlreadyCompleted
	// or ErrAlreadyTerminal.
	UpdateRequestStatus(ctx context.Context, id int, status request.Status, mechanicID *int) (*request.ServiceRequest, error)

	// Service history operations
	CreateHistory(ctx context.Context, draft history.Draft) (*history.Entry, error)
	GetHistory(ctx context.Context, id int) (*history.Entry, error)
	ListHistoryByUser(ctx context.Context, userID int) ([]*history.Entry, error)
	ReviewHistory(ctx context.Context, id int, rating int, review string) (*history.Entry, error)

	// Message operations
	CreateMessage(ctx context.Context, draft message.Draft) (*message.Message, error)
	ListMessagesByRequest(ctx context.Context, requestID int) ([]*message.Message, error)
}
