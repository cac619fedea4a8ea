package amqp

import (
	"testing"
	"time"
)

func TestRecordEventRoundTrip(t *testing.T) {
	event := NewRecordEvent(EventRecordCreated, 42)
	data, err := event.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded, err := RecordEventFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Kind != EventRecordCreated || decoded.ID != 42 {
		t.Fatalf("unexpected event: %+v", decoded)
	}
	if decoded.Timestamp.IsZero() || time.Since(decoded.Timestamp) > time.Minute {
		t.Fatalf("unexpected timestamp: %v", decoded.Timestamp)
	}
}

func TestRecordEventFromJSONRejectsGarbage(t *testing.T) {
	cases := []string{
		"not json",
		`{"kind":"record.updated","id":1}`, // unknown kind
		`{"id":1}`,                         // missing kind
	}
	for _, in := range cases {
		if _, err := RecordEventFromJSON([]byte(in)); err == nil {
			t.Fatalf("%q: expected error", in)
		}
	}
}
