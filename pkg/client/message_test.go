package client

import (
	"encoding/json"
	"testing"
)

func TestNewMessage_MarshalsPayload(t *testing.T) {
	msg, err := newMessage("cam/detect/set", "ON", false)
	if err != nil {
		t.Fatalf("newMessage: %v", err)
	}
	if msg.Topic != "cam/detect/set" {
		t.Errorf("Topic: got %q", msg.Topic)
	}
	if string(msg.Payload) != `"ON"` {
		t.Errorf("Payload: got %s, want \"ON\"", msg.Payload)
	}
}

func TestNewMessage_PassesRawThrough(t *testing.T) {
	in := json.RawMessage(`{"a":1}`)
	msg, err := newMessage("t", in, true)
	if err != nil {
		t.Fatalf("newMessage: %v", err)
	}
	if string(msg.Payload) != `{"a":1}` {
		t.Errorf("Payload: got %s", msg.Payload)
	}
	if !msg.Retain {
		t.Error("Retain: got false, want true")
	}
}

func TestNewMessage_UnencodablePayload(t *testing.T) {
	if _, err := newMessage("t", func() {}, false); err == nil {
		t.Error("expected error for unencodable payload")
	}
}

func TestPayloadString(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"json string", `"ON"`, "ON", true},
		{"bare text", `ON`, "ON", true},
		{"number", `-42.5`, "-42.5", true},
		{"empty", ``, "", false},
	}
	for _, tc := range tests {
		got, ok := payloadString(json.RawMessage(tc.raw))
		if ok != tc.ok || got != tc.want {
			t.Errorf("%s: got (%q, %v), want (%q, %v)", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDecodePayload_Object(t *testing.T) {
	var v struct {
		Type string `json:"type"`
	}
	if err := decodePayload(json.RawMessage(`{"type":"new"}`), &v); err != nil {
		t.Fatalf("decodePayload: %v", err)
	}
	if v.Type != "new" {
		t.Errorf("Type: got %q, want new", v.Type)
	}
}

func TestDecodePayload_StringEncodedObject(t *testing.T) {
	var v struct {
		Type string `json:"type"`
	}
	if err := decodePayload(json.RawMessage(`"{\"type\":\"end\"}"`), &v); err != nil {
		t.Fatalf("decodePayload: %v", err)
	}
	if v.Type != "end" {
		t.Errorf("Type: got %q, want end", v.Type)
	}
}
