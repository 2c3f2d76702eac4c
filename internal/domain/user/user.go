package user

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrMissingUsername = errors.New("username is required")
	ErrMissingName     = errors.New("name is required")
	ErrMissingEmail    = errors.New("email is required")
	ErrMissingPhone    = errors.New("phone is required")
)

// User represents a motorist who can request roadside assistance.
// Coordinates are the last reported location and may be absent until the
// first location update.
type User struct {
	ID        int      `json:"id"`
	Username  string   `json:"username"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Address   *string  `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Draft holds caller-supplied fields for a new user
type Draft struct {
	Username  string   `json:"username"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Address   *string  `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Validate checks required fields on the draft
func (d *Draft) Validate() error {
	if d.Username == "" {
		return ErrMissingUsername
	}
	if d.Name == "" {
		return ErrMissingName
	}
	if d.Email == "" {
		return ErrMissingEmail
	}
	if d.Phone == "" {
		return ErrMissingPhone
	}
	return nil
}

// HasLocation returns true if the user has a last known location
func (u *User) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}
