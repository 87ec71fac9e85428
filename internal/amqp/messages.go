package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventType is the routing name of a ledger event.
type EventType string

const (
	EventTransactionCreated   EventType = "transaction.created"
	EventTransactionDeleted   EventType = "transaction.deleted"
	EventSubscriptionsApplied EventType = "subscriptions.applied"
	EventBucketUpdated        EventType = "bucket.updated"
	EventBucketDeleted        EventType = "bucket.deleted"
)

var ErrUnknownEvent = errors.New("unknown event type")

// LedgerEvent is published after a committed mutation. It carries ids only;
// consumers load current state from the database.
type LedgerEvent struct {
	MessageID string    `json:"message_id"`
	Type      EventType `json:"type"`
	EntityID  int64     `json:"entity_id,omitempty"`
	Month     string    `json:"month,omitempty"`
	Count     int       `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent stamps a fresh message id and the current time.
func NewLedgerEvent(eventType EventType, entityID int64) *LedgerEvent {
	return &LedgerEvent{
		MessageID: uuid.NewString(),
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubscriptionsAppliedEvent reports how many transactions an apply run inserted.
func NewSubscriptionsAppliedEvent(month string, inserted int) *LedgerEvent {
	ev := NewLedgerEvent(EventSubscriptionsApplied, 0)
	ev.Month = month
	ev.Count = inserted
	return ev
}

func (t EventType) IsKnown() bool {
	switch t {
	case EventTransactionCreated, EventTransactionDeleted, EventSubscriptionsApplied,
		EventBucketUpdated, EventBucketDeleted:
		return true
	}
	return false
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event and rejects unknown types.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if !ev.Type.IsKnown() {
		return nil, ErrUnknownEvent
	}
	return &ev, nil
}
