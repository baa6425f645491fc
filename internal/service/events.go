package service

import "github.com/google/uuid"

// EventType defines the type of event
type EventType string

const (
	EventPersonSaved   EventType = "person_saved"
	EventPersonCopied  EventType = "person_copied"
	EventPersonDeleted EventType = "person_deleted"
	EventPeopleCleared EventType = "people_cleared"
)

// Event represents a change that occurred in the store
type Event struct {
	ID      string      `json:"id"`
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// newEvent builds an event with a fresh UUID.
func newEvent(t EventType, payload interface{}) Event {
	return Event{
		ID:      uuid.NewString(),
		Type:    t,
		Payload: payload,
	}
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
