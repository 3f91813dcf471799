// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

// EventType is a Matrix event type tag (e.g., "m.room.message"). The
// wire format is extensible, so any string is a valid EventType;
// unknown types pass through the sync engine opaquely.
type EventType string

// String returns the event type string.
func (t EventType) String() string { return string(t) }

// Standard Matrix event types the sync engine interprets. Everything
// else is folded into the logs without interpretation.
const (
	EventTypeRoomName       EventType = "m.room.name"
	EventTypeCanonicalAlias EventType = "m.room.canonical_alias"
	EventTypeMember         EventType = "m.room.member"
	EventTypeTopic          EventType = "m.room.topic"
	EventTypeCreate         EventType = "m.room.create"
	EventTypeMessage        EventType = "m.room.message"
)
