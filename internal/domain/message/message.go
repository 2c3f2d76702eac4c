package message

import (
	"errors"
	"time"
)

var (
	ErrInvalidSenderType = errors.New("invalid sender type")
	ErrEmptyBody         = errors.New("message body is required")
)

// SenderType identifies who wrote a message
type SenderType string

const (
	SenderUser     SenderType = "user"
	SenderMechanic SenderType = "mechanic"
	SenderSystem   SenderType = "system"
)

// IsValid validates the sender type
func (s SenderType) IsValid() bool {
	switch s {
	case SenderUser, SenderMechanic, SenderSystem:
		return true
	}
	return false
}

// Message is one chat message scoped to a service request. Messages are
// append-only and listed in creation order.
type Message struct {
	ID         int        `json:"id"`
	RequestID  int        `json:"request_id"`
	SenderID   int        `json:"sender_id"`
	SenderType SenderType `json:"sender_type"`
	Body       string     `json:"message"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Draft holds caller-supplied fields for a new message
type Draft struct {
	RequestID  int        `json:"request_id"`
	SenderID   int        `json:"sender_id"`
	SenderType SenderType `json:"sender_type"`
	Body       string     `json:"message"`
}

// Validate checks the draft's fields
func (d *Draft) Validate() error {
	if !d.SenderType.IsValid() {
		return ErrInvalidSenderType
	}
	if d.Body == "" {
		return ErrEmptyBody
	}
	return nil
}
