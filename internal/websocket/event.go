package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeIncome  EntityType = "income"
	EntityTypeBudget  EntityType = "budget"
	EntityTypeProfile EntityType = "profile"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "income.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "income"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// IncomeCreated creates an income.created event
func IncomeCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeIncome, payload)
}

// IncomeUpdated creates an income.updated event
func IncomeUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeIncome, payload)
}

// IncomeDeleted creates an income.deleted event
func IncomeDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeIncome, payload)
}

// BudgetsUpdated creates a budget.updated event
func BudgetsUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeBudget, payload)
}

// ProfileUpdated creates a profile.updated event
func ProfileUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeProfile, payload)
}
