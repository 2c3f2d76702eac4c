package history

import (
	"errors"
	"time"
)

var (
	ErrHistoryNotFound    = errors.New("service history entry not found")
	ErrAlreadyReviewed    = errors.New("history entry already reviewed")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrNegativePrice      = errors.New("price must not be negative")
	ErrMissingCompletedAt = errors.New("completion timestamp is required")
)

// Entry represents a completed service. Entries are immutable after
// creation except that a rating and review may be appended once.
type Entry struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	MechanicID  int       `json:"mechanic_id"`
	ServiceType string    `json:"service_type"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Rating      *int      `json:"rating,omitempty"` // 1-5 stars
	Review      *string   `json:"review,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Draft holds caller-supplied fields for a new history entry
type Draft struct {
	UserID      int       `json:"user_id"`
	MechanicID  int       `json:"mechanic_id"`
	ServiceType string    `json:"service_type"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Rating      *int      `json:"rating,omitempty"`
	Review      *string   `json:"review,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

// Validate checks the draft's invariants
func (d *Draft) Validate() error {
	if d.Price < 0 {
		return ErrNegativePrice
	}
	if d.CompletedAt.IsZero() {
		return ErrMissingCompletedAt
	}
	if d.Rating != nil && (*d.Rating < 1 || *d.Rating > 5) {
		return ErrInvalidRating
	}
	return nil
}

// IsReviewed returns true once a rating has been appended
func (e *Entry) IsReviewed() bool {
	return e.Rating != nil
}

// Summary aggregates a user's service history
type Summary struct {
	TotalSpent    float64 `json:"total_spent"`
	AverageRating float64 `json:"average_rating"`
	ServiceCount  int     `json:"service_count"`
	RatedCount    int     `json:"rated_count"`
}

// Summarize computes spend and rating aggregates over a set of entries.
// Unrated entries count toward spend but not toward the average rating.
func Summarize(entries []*Entry) Summary {
	var s Summary
	var ratingSum int
	for _, e := range entries {
		s.TotalSpent += e.Price
		s.ServiceCount++
		if e.Rating != nil {
			ratingSum += *e.Rating
			s.RatedCount++
		}
	}
	if s.RatedCount > 0 {
		s.AverageRating = float64(ratingSum) / float64(s.RatedCount)
	}
	return s
}
