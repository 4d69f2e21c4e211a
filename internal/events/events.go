package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventGigPosted      = "gig_posted"
	EventGigClaimed     = "gig_claimed"
	EventOfferAccepted  = "offer_accepted"
	EventOfferDeclined  = "offer_declined"
	EventOfferCountered = "offer_countered"
	EventPayoutSettled  = "payout_settled"
	EventPayoutReverted = "payout_reverted"
)

// GigEventPayload describes the minimal gig snapshot for event consumers.
type GigEventPayload struct {
	GigID    int64           `json:"gig_id"`
	VenueID  int64           `json:"venue_id"`
	Date     time.Time       `json:"date"`
	Genre    string          `json:"genre,omitempty"`
	Payment  decimal.Decimal `json:"payment"`
	ArtistID int64           `json:"artist_id,omitempty"`
}

// BookingEventPayload carries booking identity through commit/settlement events.
type BookingEventPayload struct {
	BookingID int64           `json:"booking_id"`
	ArtistID  int64           `json:"artist_id"`
	VenueID   int64           `json:"venue_id"`
	Date      time.Time       `json:"date"`
	Price     decimal.Decimal `json:"price"`
	Source    string          `json:"source,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
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
