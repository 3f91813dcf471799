// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the build version of parley binaries.
//
// [Version], [GitCommit] and [BuildTime] are injected with -ldflags -X.
// When GitCommit is not injected, [Commit] falls back to the VCS
// revision the Go toolchain stamps into module builds.
//
//   - [Info] formats the --version line
//   - [UserAgent] is the User-Agent sent to homeservers
package version
