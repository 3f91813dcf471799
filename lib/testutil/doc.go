// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for parley packages.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so tests waiting on a goroutine fail instead of hanging.
// They are the only place tests use a real wall-clock timeout.
package testutil
