// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the
// conway-term daemon.
//
// Configuration is loaded from a single file specified by either the
// CONWAY_TERM_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There are no fallbacks, no ~/.config
// discovery, and no automatic file search. This ensures deterministic,
// auditable configuration with no hidden overrides.
//
// Key exports:
//
//   - [Config] -- master struct with Board, Timing, and Serial sections
//   - [Default] -- returns a Config with the reference 8x8 setup
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// Board dimensions must be powers of two: the simulator's toroidal
// wraparound is computed by bitmasking, exactly as in the original
// silicon, and behavior for other sizes is undefined there. [Config].
// Validate rejects anything else rather than guessing.
//
// This package depends on no other packages in this module.
package config
