package request

import (
	"errors"
	"time"
)

var (
	ErrRequestNotFound    = errors.New("service request not found")
	ErrUnknownUser        = errors.New("request references an unknown user")
	ErrMissingServiceType = errors.New("service type is required")
	ErrMissingLocation    = errors.New("request coordinates are required")
	ErrMissingAddress     = errors.New("request address is required")
	ErrInvalidStatus      = errors.New("invalid request status")
	ErrInvalidPriority    = errors.New("invalid request priority")
	ErrAlreadyCompleted   = errors.New("request is already completed")
	ErrAlreadyTerminal    = errors.New("request is in a terminal state")
	ErrIllegalTransition  = errors.New("illegal status transition")
)

// Status represents the lifecycle state of a service request
type Status string

const (
	StatusPending    Status = "pending"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsValid validates the status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true for states no transition may leave
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Priority represents request urgency
type Priority string

const (
	PriorityNormal    Priority = "normal"
	PriorityHigh      Priority = "high"
	PriorityEmergency Priority = "emergency"
)

// IsValid validates the priority
func (p Priority) IsValid() bool {
	switch p {
	case PriorityNormal, PriorityHigh, PriorityEmergency:
		return true
	}
	return false
}

// CanTransition reports whether moving from one status to another follows
// the adjacency graph. Only consulted when strict lifecycle checking is
// enabled; the default dispatch flow accepts any target status.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusAssigned || to == StatusCancelled
	case StatusAssigned:
		return to == StatusInProgress || to == StatusCancelled
	case StatusInProgress:
		return to == StatusCompleted || to == StatusCancelled
	}
	return false
}

// ServiceRequest represents a roadside-assistance request. Records are
// append-only: they are never deleted, and a cancelled request keeps any
// mechanic that was assigned before cancellation.
type ServiceRequest struct {
	ID               int        `json:"id"`
	UserID           int        `json:"user_id"`
	MechanicID       *int       `json:"mechanic_id,omitempty"`
	ServiceType      string     `json:"service_type"`
	Description      string     `json:"description,omitempty"`
	Status           Status     `json:"status"`
	Priority         Priority   `json:"priority"`
	UserLatitude     float64    `json:"user_latitude"`
	UserLongitude    float64    `json:"user_longitude"`
	UserAddress      string     `json:"user_address"`
	EstimatedPrice   *float64   `json:"estimated_price,omitempty"`
	FinalPrice       *float64   `json:"final_price,omitempty"`
	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Draft holds caller-supplied fields for a new service request.
// Coordinates are pointers so that an omitted location is distinguishable
// from one at the origin.
type Draft struct {
	UserID        int      `json:"user_id"`
	ServiceType   string   `json:"service_type"`
	Description   string   `json:"description,omitempty"`
	Priority      Priority `json:"priority,omitempty"`
	UserLatitude  *float64 `json:"user_latitude"`
	UserLongitude *float64 `json:"user_longitude"`
	UserAddress   string   `json:"user_address"`
}

// Validate checks required fields and normalizes the priority default.
// The owning user's existence is checked by the dispatch engine, which
// has access to the store.
func (d *Draft) Validate() error {
	if d.ServiceType == "" {
		return ErrMissingServiceType
	}
	if d.UserLatitude == nil || d.UserLongitude == nil {
		return ErrMissingLocation
	}
	if d.UserAddress == "" {
		return ErrMissingAddress
	}
	if d.Priority == "" {
		d.Priority = PriorityNormal
	}
	if !d.Priority.IsValid() {
		return ErrInvalidPriority
	}
	return nil
}

// IsAssigned returns true once a mechanic is bound to the request
func (r *ServiceRequest) IsAssigned() bool {
	return r.MechanicID != nil
}
