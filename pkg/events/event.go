package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "INDEX_UPDATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewIndexUpdated announces that a document's index generation was replaced.
func NewIndexUpdated(documentID string, chunks int) Event {
	return BaseEvent{
		Type: "INDEX_UPDATED",
		Data: map[string]interface{}{
			"document_id": documentID,
			"chunks":      chunks,
		},
		OccurredAt: time.Now(),
	}
}
