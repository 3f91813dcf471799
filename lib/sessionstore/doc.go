// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sessionstore persists what a client needs to resume without
// logging in again or re-downloading full state.
//
// A [Store] manages two files in one state directory:
//
//   - session.json: the bootstrap [Record] (user, server, access token,
//     last transaction ID). When the Store has an age identity, the
//     record is kept as session.json.age instead, sealed to that
//     identity. A missing record is not an error: LoadRecord returns
//     an empty Record and the caller must supply credentials.
//
//   - snapshot.bin: the folded room model and the since-token it is
//     current as of. The payload is CBOR (lib/codec), optionally
//     compressed with lz4 or zstd, and covered by a keyed BLAKE3 digest
//     of the uncompressed bytes that is checked on every load. Events
//     are stored oldest-first in raw wire form, so restoring re-runs
//     normalization and folding instead of trusting a second model.
//
// Both files are written atomically (temp file and rename) with
// owner-only permissions.
package sessionstore
