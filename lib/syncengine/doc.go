// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package syncengine drives the Matrix /sync cycle for one client and
// folds each response into the session's room model.
//
// A [Manager] owns the single active [Session]. Connect builds a
// session from credentials, confirms the token's owner with whoami,
// and runs the initial full-state sync;
// Resume builds one from a persisted snapshot and skips it. Each
// session has an [Engine], whose Sync performs exactly one
// request/response cycle:
//
//	Idle -> AwaitingResponse -> Applying -> Idle
//
// A second Sync while the first is outstanding fails with
// [ErrSyncInProgress]. Run layers the long-poll loop on Sync, feeding
// each next_batch token into the following request until the context
// is cancelled or the transport fails. Retrying failed requests is the
// caller's decision.
//
// Joined rooms are folded in room ID order, state before timeline. A
// malformed event does not abort the sync: it is skipped, logged, and
// reported in an [ApplyError] once every room has been folded.
package syncengine
