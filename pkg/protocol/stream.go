package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/meetsignal/visualdelta/pkg/events"
	"github.com/meetsignal/visualdelta/pkg/visualtypes"
)

// StreamMessageType tags every text frame sent over the visual
// event-stream WebSocket.
type StreamMessageType string

const (
	StreamVisualEvents    StreamMessageType = "visual_events"
	StreamVisualStateSync StreamMessageType = "visual_state_sync"
	StreamVisualError     StreamMessageType = "visual_error"
)

// StreamMessage is the envelope for every frame on the event stream.
type StreamMessage struct {
	Type StreamMessageType `json:"type"`
	Data json.RawMessage   `json:"data,omitempty"`
}

// NewEventsMessage wraps a batch of events for the visual_events frame.
func NewEventsMessage(evts []events.VisualEvent) (*StreamMessage, error) {
	return newMessage(StreamVisualEvents, evts)
}

// NewStateSyncMessage wraps a full state snapshot for the
// visual_state_sync frame, sent on (re)connect.
func NewStateSyncMessage(state visualtypes.VisualState) (*StreamMessage, error) {
	return newMessage(StreamVisualStateSync, state)
}

// NewErrorMessage wraps an error string for the visual_error frame.
func NewErrorMessage(msg string) (*StreamMessage, error) {
	return newMessage(StreamVisualError, struct {
		Error string `json:"error"`
	}{Error: msg})
}

func newMessage(typ StreamMessageType, data interface{}) (*StreamMessage, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("protocol: marshal %s payload: %w", typ, err)
	}
	return &StreamMessage{Type: typ, Data: raw}, nil
}

// ParseData unmarshals the message's Data into v.
func (m *StreamMessage) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message.
func (m *StreamMessage) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseStreamMessage parses a JSON stream message from bytes.
func ParseStreamMessage(data []byte) (*StreamMessage, error) {
	var msg StreamMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("protocol: parse stream message: %w", err)
	}
	return &msg, nil
}
