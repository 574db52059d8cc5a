package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventReservationCreated  = "reservation_created"
	EventReservationUpdated  = "reservation_updated"
	EventReservationCanceled = "reservation_canceled"
	EventUserRegistered      = "user_registered"
	EventUserDeactivated     = "user_deactivated"
)

// ReservationEventPayload describes the minimal reservation snapshot
// for event consumers.
type ReservationEventPayload struct {
	ReservationID     int64  `json:"reservation_id"`
	ReservationNumber string `json:"reservation_number"`
	SlotID            int64  `json:"slot_id"`
	BranchID          int64  `json:"branch_id"`
	ThemeID           int64  `json:"theme_id"`
	UserID            int64  `json:"user_id,omitempty"`
	Status            string `json:"status"`
}

// UserEventPayload describes an account lifecycle change.
type UserEventPayload struct {
	UserID  int64  `json:"user_id"`
	LoginID string `json:"login_id"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}
