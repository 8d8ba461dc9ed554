package client

import (
	"encoding/json"
	"fmt"
)

// Message is the JSON envelope exchanged on the WebSocket channel, in both
// directions. Payload holds an arbitrary JSON value; Retain asks the server
// to keep the last value for late subscribers.
type Message struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
	Retain  bool            `json:"retain"`
}

// newMessage builds a Message, marshalling payload unless it is already raw
// JSON bytes.
func newMessage(topic string, payload any, retain bool) (Message, error) {
	var raw json.RawMessage
	switch p := payload.(type) {
	case json.RawMessage:
		raw = p
	case []byte:
		raw = p
	default:
		b, err := json.Marshal(payload)
		if err != nil {
			return Message{}, fmt.Errorf("client: marshal payload for %q: %w", topic, err)
		}
		raw = b
	}
	return Message{Topic: topic, Payload: raw, Retain: retain}, nil
}

// payloadString interprets raw as a JSON string. Payloads that are not
// JSON-encoded (bare MQTT passthrough text) are returned verbatim.
func payloadString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return string(raw), true
}

// decodePayload unmarshals raw into v. Feed payloads arrive either as JSON
// objects or as JSON strings containing an object (the server relays MQTT
// payloads as text), so one level of string encoding is unwrapped first.
func decodePayload(raw json.RawMessage, v any) error {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return json.Unmarshal([]byte(s), v)
	}
	return json.Unmarshal(raw, v)
}
