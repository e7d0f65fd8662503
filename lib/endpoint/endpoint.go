// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package endpoint derives unique IPC endpoint paths for player
// sessions. Every session gets its own unix socket so concurrent
// sessions in one process (or crash-looping restarts of the same
// session) never collide on an address.
package endpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
)

var socketCounter atomic.Uint64

// RuntimeDir returns the directory socket files are created in:
// XDG_RUNTIME_DIR when set, else the system temp directory. Both are
// short paths, which matters because sun_path caps unix socket paths
// at 108 bytes.
func RuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// SocketPath returns a fresh, unique socket path under dir. An empty
// dir selects RuntimeDir(). The path embeds the pid and a process-wide
// counter: the pid separates concurrent mpvhost processes, the counter
// separates sessions within one process.
func SocketPath(dir string) string {
	if dir == "" {
		dir = RuntimeDir()
	}
	return filepath.Join(dir, fmt.Sprintf("mpvhost-%d-%d.sock", os.Getpid(), socketCounter.Add(1)))
}
