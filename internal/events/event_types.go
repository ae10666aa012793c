package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered             EventType = "user_registered"
	EventEmailVerificationRequested EventType = "email_verification_requested"
	EventPasswordResetRequested     EventType = "password_reset_requested"
	EventPasswordChanged            EventType = "password_changed"
)

// Recipient identifies the account an event concerns.
type Recipient struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Recipient Recipient   `json:"recipient"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// LinkPayload carries a single-use link sent to the recipient.
type LinkPayload struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
