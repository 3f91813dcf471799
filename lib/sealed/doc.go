// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts small local files at rest with age x25519.
//
// parley uses it for the session record: when an identity file is
// configured, session.json is replaced by session.json.age, sealed to
// the identity's recipient. The identity file uses the age-keygen
// format (comment lines, then one AGE-SECRET-KEY-1 line), so keys made
// by either tool are interchangeable.
//
// Private keys are held in [secret.Buffer] values for as long as an
// [Identity] is open.
package sealed
