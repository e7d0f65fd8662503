// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package playercmd defines the typed command vocabulary accepted by
// the player session. Each command kind has a constructor that builds
// the positional argument list mpv expects, so callers never assemble
// raw argument slices. Arbitrary command names enter only through
// [Raw], which rejects kinds outside the known set.
package playercmd
