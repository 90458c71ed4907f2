package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountCreated     EventType = "account_created"
	EventSessionCreated     EventType = "session_created"
	EventSessionInvalidated EventType = "session_invalidated"
	EventSessionExpired     EventType = "session_expired"
	EventCatalogRefreshed   EventType = "catalog_refreshed"
	EventCatalogDegraded    EventType = "catalog_degraded"
	EventProductCreated     EventType = "product_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Subject   string    `json:"subject"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, subject string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// AccountCreatedPayload payload.
type AccountCreatedPayload struct {
	Email string `json:"email"`
}

// SessionPayload is shared by the session lifecycle events.
type SessionPayload struct {
	AccountID string    `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CatalogRefreshedPayload payload.
type CatalogRefreshedPayload struct {
	Key      string `json:"key"`
	Products int    `json:"products"`
	Source   string `json:"source"`
}

// CatalogDegradedPayload describes a catalog read served from a fallback.
type CatalogDegradedPayload struct {
	Key    string `json:"key"`
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// ProductCreatedPayload payload.
type ProductCreatedPayload struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
}
