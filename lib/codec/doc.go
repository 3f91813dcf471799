// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration used for on-disk state.
//
// The wire protocol with the homeserver is JSON and stays JSON. Local
// state files (the room snapshot) are CBOR, encoded with Core
// Deterministic Encoding (RFC 8949 §4.2) so that the same room model
// always produces the same bytes and therefore the same digest.
//
// Types persisted through this package use `json` struct tags;
// fxamacker/cbor falls back to them when no `cbor` tag is present, so
// a raw Matrix event keeps one set of field names in both formats.
package codec
