package dto

// CreateUserRequest represents a new user registration
type CreateUserRequest struct {
	Username  string   `json:"username" binding:"required"`
	Name      string   `json:"name" binding:"required"`
	Email     string   `json:"email" binding:"required,email"`
	Phone     string   `json:"phone" binding:"required"`
	Address   *string  `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// UpdateLocationRequest represents a user location update
type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Address   string   `json:"address" binding:"required"`
}

// CreateMechanicRequest represents mechanic onboarding
type CreateMechanicRequest struct {
	Name         string   `json:"name" binding:"required"`
	BusinessName string   `json:"business_name" binding:"required"`
	Phone        string   `json:"phone" binding:"required"`
	Email        string   `json:"email" binding:"required,email"`
	Latitude     *float64 `json:"latitude" binding:"required"`
	Longitude    *float64 `json:"longitude" binding:"required"`
	Address      string   `json:"address" binding:"required"`
	Rating       float64  `json:"rating,omitempty" binding:"omitempty,min=0,max=5"`
	ReviewCount  int      `json:"review_count,omitempty" binding:"omitempty,min=0"`
	Services     []string `json:"services" binding:"required,min=1"`
	Availability string   `json:"availability,omitempty"`
	ResponseTime int      `json:"response_time,omitempty"`
	PriceRange   string   `json:"price_range,omitempty"`
	ProfileImage *string  `json:"profile_image,omitempty"`
	Is24x7       bool     `json:"is_24x7,omitempty"`
}

// UpdateAvailabilityRequest flips a mechanic's availability state
type UpdateAvailabilityRequest struct {
	Availability string `json:"availability" binding:"required,oneof=available busy offline"`
}

// CreateServiceRequestRequest represents a new roadside-assistance request
type CreateServiceRequestRequest struct {
	UserID        int      `json:"user_id" binding:"required"`
	ServiceType   string   `json:"service_type" binding:"required"`
	Description   string   `json:"description,omitempty"`
	Priority      string   `json:"priority,omitempty" binding:"omitempty,oneof=normal high emergency"`
	UserLatitude  *float64 `json:"user_latitude" binding:"required"`
	UserLongitude *float64 `json:"user_longitude" binding:"required"`
	UserAddress   string   `json:"user_address" binding:"required"`
}

// UpdateStatusRequest represents a lifecycle transition
type UpdateStatusRequest struct {
	Status     string `json:"status" binding:"required,oneof=pending assigned in_progress completed cancelled"`
	MechanicID *int   `json:"mechanic_id,omitempty"`
}

// CreateHistoryRequest represents a completed-service record
type CreateHistoryRequest struct {
	UserID      int     `json:"user_id" binding:"required"`
	MechanicID  int     `json:"mechanic_id" binding:"required"`
	ServiceType string  `json:"service_type" binding:"required"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price" binding:"min=0"`
	Rating      *int    `json:"rating,omitempty" binding:"omitempty,min=1,max=5"`
	Review      *string `json:"review,omitempty"`
	CompletedAt string  `json:"completed_at" binding:"required"` // RFC 3339
}

// ReviewHistoryRequest appends a rating and optional review text
type ReviewHistoryRequest struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Review string `json:"review,omitempty"`
}

// CreateMessageRequest represents a chat message on a request
type CreateMessageRequest struct {
	RequestID  int    `json:"request_id" binding:"required"`
	SenderID   int    `json:"sender_id" binding:"required"`
	SenderType string `json:"sender_type" binding:"required,oneof=user mechanic system"`
	Message    string `json:"message" binding:"required"`
}

// ErrorResponse is the boundary's error envelope
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
