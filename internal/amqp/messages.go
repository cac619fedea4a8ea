package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event kinds carried on the export queue.
const (
	EventRecordCreated = "record.created"
	EventRecordDeleted = "record.deleted"
	EventLedgerCleared = "ledger.cleared"
)

// RecordEvent is a lightweight change notification for the export
// worker. It carries only the record ID; the worker fetches the full
// record from storage when it needs one.
type RecordEvent struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordEvent creates an event of the given kind for a record ID.
// Ledger-wide events (clear) use ID 0.
func NewRecordEvent(kind string, id int64) *RecordEvent {
	return &RecordEvent{
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON decodes an event, rejecting unknown kinds.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Kind {
	case EventRecordCreated, EventRecordDeleted, EventLedgerCleared:
		return &e, nil
	default:
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
}
