// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for parley.
//
// Configuration is loaded from a single file named by either the
// PARLEY_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no discovery and no automatic search; a
// command run without either uses [Default].
//
// ${HOME} and ${VAR:-default} patterns are expanded in path fields
// after loading. No other environment variables override config
// values; command-line flags are the only override layer.
//
// This package depends on no other parley packages.
package config
