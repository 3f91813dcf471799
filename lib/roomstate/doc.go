// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package roomstate is the client-side room model: typed events, the
// per-room state and timeline logs, the projector that folds /sync
// payloads into them, and the display name resolver.
//
// [Normalize] turns a raw wire event into an [Event], resolving the
// sender through a userregistry.Registry so every Event carries a
// shared *userregistry.User rather than a bare ID. Events missing
// event_id, type, or sender fail with a [*MalformedEventError].
//
// A [Room] owns two logs, both ordered most-recent-first: the state
// log (name, aliases, membership, ...) and the timeline log (messages
// and other activity). Logs are prepend-only. The [Projector] applies a
// joined-room payload, whose event lists arrive oldest-first, by
// prepending each event in order, so the last event delivered becomes
// the head of its log. Folding does not deduplicate by event ID:
// replaying a payload appends its events again.
//
// State events are not keyed by (type, state_key); the state log is a
// history, and readers such as [ResolveName] scan it head-to-tail for
// the most recent event of a type. Membership-aware readers
// ([NameResolver] with UseMembers) collapse m.room.member events by
// state key themselves.
package roomstate
