// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"encoding/json"
	"testing"
)

type sampleEvent struct {
	EventID string         `json:"event_id"`
	Type    string         `json:"type"`
	Content map[string]any `json:"content"`
	TS      int64          `json:"origin_server_ts"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleEvent{
		EventID: "$e1",
		Type:    "m.room.name",
		Content: map[string]any{"name": "Lobby"},
		TS:      1700000000000,
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleEvent
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.EventID != original.EventID || decoded.Type != original.Type || decoded.TS != original.TS {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
	if decoded.Content["name"] != "Lobby" {
		t.Errorf("content lost: %v", decoded.Content)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	// Map iteration order differs between runs; the encoding must not.
	value := map[string]any{"b": 1, "a": 2, "c": map[string]any{"z": true, "y": false}}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	for range 10 {
		again, err := Marshal(value)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("deterministic encoding violated: %x != %x", first, again)
		}
	}
}

func TestNestedContentIsJSONCompatible(t *testing.T) {
	var content map[string]any
	if err := json.Unmarshal([]byte(`{"body":"hi","m.relates_to":{"rel_type":"m.thread"},"tags":["a","b"]}`), &content); err != nil {
		t.Fatal(err)
	}

	data, err := Marshal(sampleEvent{EventID: "$e1", Content: content})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded sampleEvent
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if _, ok := decoded.Content["m.relates_to"].(map[string]any); !ok {
		t.Fatalf("nested map decoded as %T, want map[string]any", decoded.Content["m.relates_to"])
	}
	if _, err := json.Marshal(decoded.Content); err != nil {
		t.Errorf("decoded content is not JSON-marshalable: %v", err)
	}
}
