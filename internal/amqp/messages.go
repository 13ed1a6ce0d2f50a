package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types, also used as routing keys on the topic exchange.
const (
	EventExpenseCreated     = "expense.created"
	EventRecurringCreated   = "recurring.created"
	EventRecurringGenerated = "recurring.generated"
	EventCategoryCreated    = "category.created"
	EventCategoryUpdated    = "category.updated"
	EventCategoryDeleted    = "category.deleted"
)

// Event is a domain event published after a successful backend mutation.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	UserEmail  string          `json:"userEmail,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// NewEvent builds an event with a fresh id; payload is encoded as JSON.
func NewEvent(eventType, userEmail string, payload any) (Event, error) {
	e := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserEmail:  userEmail,
		OccurredAt: time.Now().UTC(),
	}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
		}
		e.Payload = b
	}
	return e, nil
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes an event published by Client.Publish
func EventFromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}
