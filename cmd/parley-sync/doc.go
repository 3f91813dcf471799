// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Parley-sync keeps a local model of a Matrix account's joined rooms
// current by long-polling the homeserver's /sync endpoint.
//
// On startup it loads the session record from the state directory (or
// takes --user-id and --token for a first login). When a room snapshot
// from a previous run exists it resumes from it without a full-state
// sync; otherwise it performs the initial full-state sync. After every
// applied sync it saves the record and, unless disabled, the snapshot.
//
// Configuration is read from the YAML file named by --config or
// PARLEY_CONFIG. Without either, built-in defaults apply. When
// identity_file is configured, the record holding the access token is
// stored sealed to that age identity, which is generated on first use.
//
// Usage:
//
//	parley-sync --user-id @me:example.org --token syt_... --once --list
//	parley-sync                      # resume and follow
//	parley-sync --room '!abc:example.org' --message 'hello' --once
package main
