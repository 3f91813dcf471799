// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomstate

import (
	"testing"

	"github.com/bureau-foundation/parley/lib/ref"
	"github.com/bureau-foundation/parley/lib/userregistry"
	"github.com/bureau-foundation/parley/messaging"
)

func rawEvent(id string, eventType ref.EventType, sender string, content map[string]any) messaging.Event {
	return messaging.Event{
		EventID: ref.EventID(id),
		Type:    eventType,
		Sender:  ref.UserID(sender),
		Content: content,
	}
}

func rawState(id string, eventType ref.EventType, sender, stateKey string, content map[string]any) messaging.Event {
	event := rawEvent(id, eventType, sender, content)
	event.StateKey = &stateKey
	return event
}

func newTestProjector(t *testing.T) (*Projector, *RoomSet, *userregistry.Registry) {
	t.Helper()
	rooms := NewRoomSet()
	users := userregistry.New()
	return NewProjector(rooms, users, nil), rooms, users
}

func eventIDs(events []*Event) []ref.EventID {
	ids := make([]ref.EventID, len(events))
	for index, event := range events {
		ids[index] = event.ID
	}
	return ids
}

func assertIDs(t *testing.T, label string, events []*Event, want ...ref.EventID) {
	t.Helper()
	got := eventIDs(events)
	if len(got) != len(want) {
		t.Fatalf("%s: got %v, want %v", label, got, want)
	}
	for index := range want {
		if got[index] != want[index] {
			t.Fatalf("%s: got %v, want %v", label, got, want)
		}
	}
}

type countingProgress struct{ steps int }

func (c *countingProgress) Step() { c.steps++ }
