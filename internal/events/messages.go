package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Operations carried by a RecordEvent.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// RecordEvent is a lightweight change notification: the operation and
// the record id, nothing more. Consumers that need the full record read
// it back through the store.
type RecordEvent struct {
	Op        string    `json:"op"`
	RecordID  string    `json:"recordId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordEvent(op, recordID string) *RecordEvent {
	return &RecordEvent{
		Op:        op,
		RecordID:  recordID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON parses an event, rejecting unknown operations so
// a consumer never acts on a payload it does not understand.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var ev RecordEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	switch ev.Op {
	case OpCreated, OpUpdated, OpDeleted:
	default:
		return nil, fmt.Errorf("unknown event op %q", ev.Op)
	}
	return &ev, nil
}
