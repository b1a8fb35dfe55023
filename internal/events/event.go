package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventInfo    EventType = "info"
	EventWarn    EventType = "warn"
	EventSuccess EventType = "success"
	EventError   EventType = "error"
)

// Event names the webview subscribes to.
const (
	StoreChanged = "store:changed"
	ChatUpdated  = "chat:updated"
)

// Event is a backend notification pushed to the webview.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	Collection string    `json:"collection,omitempty"`
	SessionID  string    `json:"sessionId,omitempty"`
}

func NewEvent(eventType EventType, message string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// CollectionChanged reports that a stored collection was mutated and any
// cached copy should be fetched again.
func CollectionChanged(collection string) Event {
	evt := NewEvent(EventSuccess, collection+" changed")
	evt.Collection = collection
	return evt
}
