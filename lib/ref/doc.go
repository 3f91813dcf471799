// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref defines the identifier types shared by the sync engine:
// room IDs, user IDs, event IDs, and event types.
//
// Unlike a homeserver, a sync client cannot reject identifiers it
// receives: whatever the server sends in a /sync response is the
// identity of that room, user, or event. The types here are therefore
// named string types rather than validated wrappers. They exist for
// compile-time safety (a room ID cannot be passed where a user ID is
// expected) and for the few structural accessors a client needs, such
// as [UserID.Localpart] for fallback display names.
//
// Standard Matrix event types used by the folding and naming logic are
// declared as [EventType] constants.
package ref
