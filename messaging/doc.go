// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging is the HTTP transport between the sync engine and
// a Matrix homeserver's client-server API.
//
// [Client] holds the homeserver base URL, the HTTP transport, and a
// logger. [Client.SessionFromToken] binds it to an existing access
// token, producing a [DirectSession]; this package never performs
// login or registration, since sessions are bootstrapped from stored
// credentials. The access token lives in a secret.Buffer (mmap-backed,
// locked against swap); callers must call DirectSession.Close.
//
// DirectSession.Sync issues GET /sync with the since token, the
// full_state flag, an optional long-poll timeout, and an optional
// filter, and decodes the response into [SyncResponse]. Only the
// joined-rooms section is consumed by the engine; invited and left
// rooms are decoded but otherwise ignored.
//
// Outgoing writes (DirectSession.SendMessage, DirectSession.SendEvent)
// are tagged with a per-session monotonically increasing transaction
// ID, seeded from the persisted session record so IDs never repeat
// across restarts.
//
// All API errors are returned as [*MatrixError] with the Matrix error
// code (M_FORBIDDEN, M_UNKNOWN_TOKEN, ...) and HTTP status code.
// [IsMatrixError] tests for a specific code and [IsAuthError] for a
// rejected access token. Retry and backoff on
// transport failures are left to the caller.
package messaging
