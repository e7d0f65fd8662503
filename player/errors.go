// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package player

import (
	"errors"
	"fmt"
	"time"

	"github.com/strand-media/mpvhost/lib/playercmd"
)

// ErrSessionClosed rejects commands that were still outstanding when
// the session was torn down, and new commands issued afterwards.
var ErrSessionClosed = errors.New("player session closed")

// ErrConnectionLost rejects commands that had been written to a
// connection that dropped before their reply arrived. Whether the
// player executed them is unknowable; the caller decides whether to
// retry.
var ErrConnectionLost = errors.New("player connection lost before reply")

// SpawnError reports that the player process failed to start or exited
// before its IPC socket became ready. Callers can use errors.As to
// read the captured diagnostics:
//
//	var spawnErr *player.SpawnError
//	if errors.As(err, &spawnErr) { log(spawnErr.Stderr) }
type SpawnError struct {
	// Stderr is the tail of the process's standard error output.
	Stderr string
	// ExitCode is the process exit code, or -1 when it died from a
	// signal or never ran.
	ExitCode int
	// Signal is the name of the fatal signal ("SIGKILL", ...), empty
	// for a normal exit.
	Signal string
	// Err is the underlying spawn error, if the process never started.
	Err error
}

func (e *SpawnError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("spawning player process: %v", e.Err)
	case e.Signal != "":
		return fmt.Sprintf("player process killed by %s before IPC was ready: %s", e.Signal, e.Stderr)
	default:
		return fmt.Sprintf("player process exited with code %d before IPC was ready: %s", e.ExitCode, e.Stderr)
	}
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ConnectTimeoutError reports that the IPC socket could not be
// established within the configured timeout window.
type ConnectTimeoutError struct {
	// Timeout is the window that elapsed.
	Timeout time.Duration
	// LastError is the most recent dial failure, nil if no attempt
	// completed.
	LastError error
}

func (e *ConnectTimeoutError) Error() string {
	if e.LastError != nil {
		return fmt.Sprintf("connecting to player IPC socket: timed out after %v (last error: %v)", e.Timeout, e.LastError)
	}
	return fmt.Sprintf("connecting to player IPC socket: timed out after %v", e.Timeout)
}

func (e *ConnectTimeoutError) Unwrap() error { return e.LastError }

// CommandError reports a non-success reply to one specific command.
// It is delivered only on that command's handle; other in-flight
// commands are unaffected.
type CommandError struct {
	// Command is the command that failed, for diagnostics.
	Command playercmd.Command
	// Reason is the error string the player reported.
	Reason string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: %s", e.Command.String(), e.Reason)
}
