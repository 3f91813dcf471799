// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "strings"

// RoomID identifies a room (e.g., "!abc123:example.org"). Opaque: no
// structural validation is performed. Lookups by RoomID are exact
// string matches.
type RoomID string

// String returns the room ID string.
func (r RoomID) String() string { return string(r) }

// IsZero reports whether the room ID is empty.
func (r RoomID) IsZero() bool { return r == "" }

// UserID identifies a user (e.g., "@alice:example.org"). Opaque: ids
// that do not follow the @localpart:server shape are accepted as-is.
type UserID string

// String returns the user ID string.
func (u UserID) String() string { return string(u) }

// IsZero reports whether the user ID is empty.
func (u UserID) IsZero() bool { return u == "" }

// Localpart returns the portion between the leading '@' and the first
// ':'. For ids that do not have that shape, the whole id is returned
// with any leading '@' stripped, so the result is always usable as a
// human-readable fallback.
func (u UserID) Localpart() string {
	raw := strings.TrimPrefix(string(u), "@")
	if index := strings.IndexByte(raw, ':'); index > 0 {
		return raw[:index]
	}
	return raw
}

// Server returns the portion after the first ':', or "" if the id has
// no server part.
func (u UserID) Server() string {
	index := strings.IndexByte(string(u), ':')
	if index < 0 {
		return ""
	}
	return string(u)[index+1:]
}

// EventID identifies an event (e.g., "$base64hash"). Opaque.
type EventID string

// String returns the event ID string.
func (e EventID) String() string { return string(e) }

// IsZero reports whether the event ID is empty.
func (e EventID) IsZero() bool { return e == "" }
