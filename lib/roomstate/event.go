// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomstate

import (
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/parley/lib/ref"
	"github.com/bureau-foundation/parley/lib/userregistry"
	"github.com/bureau-foundation/parley/messaging"
)

// Event is a normalized, immutable room event. The sender is shared
// with every other event from the same user in the session; never copy
// or mutate it through an Event.
type Event struct {
	ID             ref.EventID
	Sender         *userregistry.User
	Type           ref.EventType
	Content        map[string]any
	OriginServerTS int64

	// Unsigned is the server-added side channel, kept as raw JSON and
	// never interpreted by folding.
	Unsigned json.RawMessage

	// StateKey is carried through from the wire for readers that need
	// it (membership); folding itself ignores it. Nil for timeline
	// events that are not state events.
	StateKey *string
}

// IsState reports whether the event carried a state_key on the wire.
func (e *Event) IsState() bool {
	return e.StateKey != nil
}

// Raw converts the event back to wire form. Used to persist the room
// model; a later Normalize of the result yields an equivalent Event.
func (e *Event) Raw() messaging.Event {
	return messaging.Event{
		EventID:        e.ID,
		Type:           e.Type,
		Sender:         e.Sender.ID(),
		OriginServerTS: e.OriginServerTS,
		Content:        e.Content,
		StateKey:       e.StateKey,
		Unsigned:       e.Unsigned,
	}
}

// ContentString returns content[key] if it is a string.
func (e *Event) ContentString(key string) (string, bool) {
	value, ok := e.Content[key].(string)
	return value, ok
}

// DecodeContent converts the event's open content map into T by way of
// its JSON encoding. Use for structured content types with more than a
// field or two:
//
//	member, err := roomstate.DecodeContent[roomstate.MemberContent](event)
func DecodeContent[T any](event *Event) (T, error) {
	var result T
	data, err := json.Marshal(event.Content)
	if err != nil {
		return result, fmt.Errorf("encoding %s content of %s: %w", event.Type, event.ID, err)
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("decoding %s content of %s: %w", event.Type, event.ID, err)
	}
	return result, nil
}
