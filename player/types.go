// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package player

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/strand-media/mpvhost/lib/clock"
	"github.com/strand-media/mpvhost/lib/transcript"
)

// State is the session lifecycle state.
type State string

const (
	// StateStopped means no subprocess exists. The initial state, and
	// the state after Stop or a failed Start.
	StateStopped State = "stopped"
	// StateStarting means a subprocess is being spawned or its socket
	// is being connected.
	StateStarting State = "starting"
	// StateStarted means the subprocess is running and the IPC
	// connection is ready.
	StateStarted State = "started"
	// StateErrored means an automatic restart failed. The session
	// stays down until Start is called again or it is stopped.
	StateErrored State = "errored"
)

// ConnState is the IPC connection state.
type ConnState string

const (
	// ConnDisconnected means no socket exists. Commands are queued.
	ConnDisconnected ConnState = "disconnected"
	// ConnConnecting means a dial loop is in progress. Commands are
	// queued.
	ConnConnecting ConnState = "connecting"
	// ConnReady means the socket is established. Commands are written
	// immediately.
	ConnReady ConnState = "ready"
	// ConnClosing means teardown is in progress. Commands are
	// rejected.
	ConnClosing ConnState = "closing"
)

// Event is an asynchronous player event that is not a property-change
// delivered to an observer: playback-restart, end-file, seek, and so
// on. Data is the complete frame as received.
type Event struct {
	Name string
	Data json.RawMessage
}

// PropertyCallback receives property-change values for one observed
// property. The value is the raw JSON of the event's data field; nil
// when the property became unavailable. Callbacks run on the session's
// read loop and must not block.
type PropertyCallback func(value json.RawMessage)

// Defaults applied by New when the corresponding Config field is zero.
const (
	// DefaultBinary is the player executable resolved via PATH.
	DefaultBinary = "mpv"
	// DefaultConnectTimeout bounds the whole dial loop for one start.
	DefaultConnectTimeout = 5 * time.Second
	// DefaultEventBuffer is the capacity of the pass-through event
	// channel. Events beyond a full buffer are dropped with a log.
	DefaultEventBuffer = 64

	// connectRetryInterval is the fixed delay between dial attempts
	// while the subprocess is still creating its socket.
	connectRetryInterval = 20 * time.Millisecond
	// terminateGrace is how long Stop waits after SIGTERM before
	// escalating to SIGKILL.
	terminateGrace = 3 * time.Second
	// stderrLimit caps captured subprocess stderr. Only the tail is
	// kept; that is where mpv puts its fatal messages.
	stderrLimit = 64 * 1024
)

// Config configures a Session. The zero value is usable: it runs
// "mpv" from PATH on a fresh socket under the runtime directory with
// discard logging.
type Config struct {
	// Binary is the player executable. Default "mpv".
	Binary string

	// Args are extra command-line arguments for the subprocess. The
	// session appends its own defaults (--idle=yes, --no-config,
	// --audio-fallback-to-null=yes, --msg-level=all=warn) for any
	// option key not already present in Args. A caller-supplied
	// --input-ipc-server is discarded: the session owns the endpoint.
	Args []string

	// SocketPath is the IPC endpoint. Empty means a unique path under
	// SocketDir (or the runtime directory) is generated.
	SocketPath string

	// SocketDir is where generated socket paths live. Ignored when
	// SocketPath is set.
	SocketDir string

	// ConnectTimeout bounds the socket dial loop for each start.
	// Default 5s.
	ConnectTimeout time.Duration

	// Logger receives structured session logs. Default discards.
	Logger *slog.Logger

	// Clock drives retry pacing and kill escalation. Default real time.
	Clock clock.Clock

	// Transcript, when set, records every wire frame in both
	// directions for post-mortem debugging.
	Transcript *transcript.Writer

	// OnRestart is called after every successful start except the
	// first, with the number of restarts so far. Called off the
	// session lock; must not block for long.
	OnRestart func(restarts int)

	// OnError receives errors with no addressable command: unmatched
	// failure replies, malformed frames, failed observation
	// re-registration, and failed automatic restarts. Called off the
	// session lock; must not block for long.
	OnError func(err error)

	// EventBuffer is the pass-through event channel capacity.
	// Default 64.
	EventBuffer int
}
