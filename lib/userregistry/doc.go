// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package userregistry deduplicates sender identities across all rooms
// of a sync session.
//
// [Registry.Resolve] returns the same *[User] for every occurrence of a
// sender ID, so events from different rooms and different syncs share
// one User value. Identity equality matters: features such as mention
// highlighting compare *User pointers, not IDs.
//
// A Registry is owned by a session and lives exactly as long as it. It
// never shrinks on its own; long-running callers that drop rooms can
// evict users they no longer reference with [Registry.Prune].
package userregistry
