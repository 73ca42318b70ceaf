// ABOUTME: Event is the envelope for every recorded sort step, wrapping EventPayload variants.
// ABOUTME: Three payload variants with tagged-union JSON serialization via a "type" discriminator.
package sorting

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Event is an immutable entry in a sort's history.
type Event struct {
	ID        ulid.ULID    `json:"id"`
	Seq       int          `json:"seq"`
	Timestamp time.Time    `json:"timestamp"`
	Payload   EventPayload `json:"-"`
}

type eventJSON struct {
	ID        ulid.ULID       `json:"id"`
	Seq       int             `json:"seq"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// MarshalJSON serializes the Event with its payload inlined.
func (e Event) MarshalJSON() ([]byte, error) {
	payloadJSON, err := MarshalEventPayload(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	return json.Marshal(eventJSON{
		ID:        e.ID,
		Seq:       e.Seq,
		Timestamp: e.Timestamp,
		Payload:   payloadJSON,
	})
}

// UnmarshalJSON deserializes the Event with its payload.
func (e *Event) UnmarshalJSON(data []byte) error {
	var j eventJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	payload, err := UnmarshalEventPayload(j.Payload)
	if err != nil {
		return fmt.Errorf("unmarshal event payload: %w", err)
	}
	e.ID = j.ID
	e.Seq = j.Seq
	e.Timestamp = j.Timestamp
	e.Payload = payload
	return nil
}

// EventPayload is a tagged union of the recorded step kinds.
type EventPayload interface {
	EventPayloadType() string
	eventPayloadSeal()
}

// CompareEvent records a comparison of the values at I and J.
type CompareEvent struct {
	I      int `json:"i"`
	J      int `json:"j"`
	ValueI int `json:"value_i"`
	ValueJ int `json:"value_j"`
}

func (CompareEvent) EventPayloadType() string { return "Compare" }
func (CompareEvent) eventPayloadSeal()        {}

// SwapEvent records an exchange of the values at I and J. Values are as
// they were before the swap.
type SwapEvent struct {
	I      int `json:"i"`
	J      int `json:"j"`
	ValueI int `json:"value_i"`
	ValueJ int `json:"value_j"`
}

func (SwapEvent) EventPayloadType() string { return "Swap" }
func (SwapEvent) eventPayloadSeal()        {}

// CompleteEvent records the end of the sort.
type CompleteEvent struct {
	Comparisons int   `json:"comparisons"`
	Swaps       int   `json:"swaps"`
	Final       []int `json:"final"`
}

func (CompleteEvent) EventPayloadType() string { return "Complete" }
func (CompleteEvent) eventPayloadSeal()        {}

// MarshalEventPayload serializes a payload with its "type" discriminator.
func MarshalEventPayload(p EventPayload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("cannot marshal nil event payload")
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	typeJSON, _ := json.Marshal(p.EventPayloadType())
	m["type"] = typeJSON
	return json.Marshal(m)
}

// UnmarshalEventPayload deserializes a payload using its "type" discriminator.
func UnmarshalEventPayload(data []byte) (EventPayload, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshal event payload type: %w", err)
	}
	switch envelope.Type {
	case "Compare":
		var p CompareEvent
		return p, json.Unmarshal(data, &p)
	case "Swap":
		var p SwapEvent
		return p, json.Unmarshal(data, &p)
	case "Complete":
		var p CompleteEvent
		return p, json.Unmarshal(data, &p)
	default:
		return nil, fmt.Errorf("unknown event payload type %q", envelope.Type)
	}
}
