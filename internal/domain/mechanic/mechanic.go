package mechanic

import "errors"

var (
	ErrMechanicNotFound    = errors.New("mechanic not found")
	ErrInvalidAvailability = errors.New("invalid availability")
	ErrMissingName         = errors.New("mechanic name is required")
	ErrMissingBusinessName = errors.New("business name is required")
	ErrMissingServices     = errors.New("at least one service is required")
	ErrInvalidResponseTime = errors.New("response time must be positive")
	ErrInvalidRating       = errors.New("rating must be between 0 and 5")
	ErrInvalidReviewCount  = errors.New("review count must not be negative")
)

// Availability represents a mechanic's availability state
type Availability string

const (
	Available Availability = "available"
	Busy      Availability = "busy"
	Offline   Availability = "offline"
)

// IsValid validates the availability state
func (a Availability) IsValid() bool {
	switch a {
	case Available, Busy, Offline:
		return true
	}
	return false
}

// DefaultResponseTime is the assumed response time in minutes when a
// mechanic does not report one.
const DefaultResponseTime = 15

// Mechanic represents a roadside service provider. Coordinates are
// mandatory: a mechanic that cannot be located cannot be dispatched.
type Mechanic struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	BusinessName string       `json:"business_name"`
	Phone        string       `json:"phone"`
	Email        string       `json:"email"`
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`
	Address      string       `json:"address"`
	Rating       float64      `json:"rating"`
	ReviewCount  int          `json:"review_count"`
	Services     []string     `json:"services"`
	Availability Availability `json:"availability"`
	ResponseTime int          `json:"response_time"` // minutes
	PriceRange   string       `json:"price_range"`
	ProfileImage *string      `json:"profile_image,omitempty"`
	Is24x7       bool         `json:"is_24x7"`
}

// Draft holds caller-supplied fields for onboarding a mechanic.
// Rating and ReviewCount carry an established reputation over from a
// previous platform; a fresh mechanic leaves both zero.
type Draft struct {
	Name         string       `json:"name"`
	BusinessName string       `json:"business_name"`
	Phone        string       `json:"phone"`
	Email        string       `json:"email"`
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`
	Address      string       `json:"address"`
	Rating       float64      `json:"rating"`
	ReviewCount  int          `json:"review_count"`
	Services     []string     `json:"services"`
	Availability Availability `json:"availability"`
	ResponseTime int          `json:"response_time"`
	PriceRange   string       `json:"price_range"`
	ProfileImage *string      `json:"profile_image,omitempty"`
	Is24x7       bool         `json:"is_24x7"`
}

// Validate checks required fields and normalizes defaults
func (d *Draft) Validate() error {
	if d.Name == "" {
		return ErrMissingName
	}
	if d.BusinessName == "" {
		return ErrMissingBusinessName
	}
	if len(d.Services) == 0 {
		return ErrMissingServices
	}
	if d.Availability == "" {
		d.Availability = Available
	}
	if !d.Availability.IsValid() {
		return ErrInvalidAvailability
	}
	if d.ResponseTime == 0 {
		d.ResponseTime = DefaultResponseTime
	}
	if d.ResponseTime < 0 {
		return ErrInvalidResponseTime
	}
	if d.Rating < 0 || d.Rating > 5 {
		return ErrInvalidRating
	}
	if d.ReviewCount < 0 {
		return ErrInvalidReviewCount
	}
	return nil
}

// IsAvailable returns true if the mechanic can take a new request
func (m *Mechanic) IsAvailable() bool {
	return m.Availability == Available
}
