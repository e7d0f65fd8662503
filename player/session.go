// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package player

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/strand-media/mpvhost/lib/clock"
	"github.com/strand-media/mpvhost/lib/endpoint"
	"github.com/strand-media/mpvhost/lib/playercmd"
	"github.com/strand-media/mpvhost/lib/transcript"
)

// Session supervises one mpv subprocess and its IPC connection. Create
// with [New], bring up with [Start], tear down with [Stop]. All methods
// are safe for concurrent use.
type Session struct {
	config     Config
	logger     *slog.Logger
	clock      clock.Clock
	launcher   launcher
	socketPath string

	events chan Event

	mu            sync.Mutex
	state         State
	connState     ConnState
	conn          net.Conn
	link          *link
	generation    int
	starts        int
	stopping      bool
	nextRequestID int64
	nextObserveID int64
	pending       map[int64]*pendingRequest
	queue         []*pendingRequest
	observations  map[string]*observation
}

// New creates a Session. Nothing runs until Start is called.
func New(config Config) *Session {
	if config.Binary == "" {
		config.Binary = DefaultBinary
	}
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = DefaultConnectTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = DefaultEventBuffer
	}
	socketPath := config.SocketPath
	if socketPath == "" {
		socketPath = endpoint.SocketPath(config.SocketDir)
	}
	return &Session{
		config:       config,
		logger:       config.Logger,
		clock:        config.Clock,
		launcher:     execLauncher{},
		socketPath:   socketPath,
		events:       make(chan Event, config.EventBuffer),
		state:        StateStopped,
		connState:    ConnDisconnected,
		pending:      make(map[int64]*pendingRequest),
		observations: make(map[string]*observation),
	}
}

// Start spawns the player subprocess and establishes the IPC
// connection, blocking until the session is ready or the attempt
// fails. A no-op when the session is already starting or started.
// Failures are a *SpawnError (the process died first), a
// *ConnectTimeoutError (the socket never came up), or ctx's error.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateStarting || s.state == StateStarted {
		s.mu.Unlock()
		return nil
	}
	s.stopping = false
	s.state = StateStarting
	s.generation++
	generation := s.generation
	s.mu.Unlock()

	if err := s.startOnce(ctx, generation); err != nil {
		s.mu.Lock()
		if s.generation == generation {
			s.state = StateStopped
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// Stop tears the session down: every outstanding command is rejected
// with [ErrSessionClosed], the connection is closed, and the
// subprocess is terminated (SIGTERM, escalating to SIGKILL after a
// grace period). Idempotent. The session can be started again
// afterwards; live observations are re-registered on the next start.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return nil
	}
	s.stopping = true
	s.connState = ConnClosing
	link := s.link
	s.link = nil
	s.conn = nil
	outstanding := s.takeOutstandingLocked()
	s.state = StateStopped
	s.starts = 0
	s.mu.Unlock()

	for _, request := range outstanding {
		request.future.complete(nil, fmt.Errorf("%q: %w", request.command.String(), ErrSessionClosed))
	}

	if link != nil {
		link.conn.Close()
		select {
		case <-link.handle.done():
		default:
			if err := link.handle.terminate(); err != nil {
				link.handle.kill()
			}
			select {
			case <-link.handle.done():
			case <-s.clock.After(terminateGrace):
				link.handle.kill()
				<-link.handle.done()
			}
		}
		s.logger.Info("player session stopped", "socket", s.socketPath)
	}

	// The session reports closing until the process is reaped.
	s.mu.Lock()
	s.connState = ConnDisconnected
	s.mu.Unlock()
	return nil
}

// Command issues a typed command and waits for its reply. On success
// it returns the reply's data payload as raw JSON (nil for commands
// that return nothing). A non-success reply is a *CommandError.
func (s *Session) Command(ctx context.Context, command playercmd.Command) (json.RawMessage, error) {
	return s.Issue(command).Wait(ctx)
}

// GetProperty reads a property and unmarshals its value into out
// (a pointer, as for json.Unmarshal). A nil out discards the value.
func (s *Session) GetProperty(ctx context.Context, name string, out any) error {
	data, err := s.Command(ctx, playercmd.GetProperty(name))
	if err != nil {
		return err
	}
	if out == nil || data == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding property %q value %s: %w", name, data, err)
	}
	return nil
}

// SetProperty writes a property value.
func (s *Session) SetProperty(ctx context.Context, name string, value any) error {
	_, err := s.Command(ctx, playercmd.SetProperty(name, value))
	return err
}

// Events returns the pass-through channel for player events that are
// not property-change notifications (end-file, seek, ...). The channel
// is never closed; drain it from a dedicated goroutine. Events are
// dropped when the buffer is full.
func (s *Session) Events() <-chan Event { return s.events }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ConnectionState returns the current IPC connection state.
func (s *Session) ConnectionState() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connState
}

// SocketPath returns the IPC endpoint the session (re)uses for its
// subprocess.
func (s *Session) SocketPath() string { return s.socketPath }

// Process returns the live subprocess handle, or nil when no process
// is running. For advanced callers; the handle changes across
// restarts and is not part of the stability contract.
func (s *Session) Process() *os.Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.link == nil {
		return nil
	}
	return s.link.handle.osProcess()
}

// Conn returns the live IPC connection, or nil when disconnected. For
// advanced callers; reading from it races the session's own read loop.
func (s *Session) Conn() net.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// reportError surfaces an error with no addressable command. Never
// called with the session lock held.
func (s *Session) reportError(err error) {
	s.logger.Warn("session error", "error", err)
	if s.config.OnError != nil {
		s.config.OnError(err)
	}
}

// transcribe records one wire frame when a transcript is configured.
func (s *Session) transcribe(direction transcript.Direction, frame []byte) {
	if s.config.Transcript == nil {
		return
	}
	if err := s.config.Transcript.Record(direction, frame); err != nil {
		s.logger.Debug("transcript write failed", "error", err)
	}
}

func (s *Session) stoppingNow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopping
}
