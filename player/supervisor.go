// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package player

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/strand-media/mpvhost/lib/process"
)

// launcher spawns player subprocesses. The exec-backed implementation
// is the production path; tests substitute an in-process fake that
// serves the IPC protocol itself.
type launcher interface {
	launch(binary string, args []string) (procHandle, error)
}

// procHandle is one spawned subprocess. done() is closed after the
// process has been reaped; the exit accessors are valid from then on.
type procHandle interface {
	done() <-chan struct{}
	exitCode() int
	signal() string
	stderr() string
	pid() int
	osProcess() *os.Process
	terminate() error
	kill() error
}

// link ties together the pieces of one supervisor generation: one
// subprocess and the one socket connection to it.
type link struct {
	generation int
	handle     procHandle
	conn       net.Conn

	lostOnce sync.Once
	lost     chan struct{}
	cause    error
}

// markLost records the first connection-level failure and wakes the
// monitor. Later calls are no-ops.
func (l *link) markLost(cause error) {
	l.lostOnce.Do(func() {
		l.cause = cause
		close(l.lost)
	})
}

// startOnce performs one complete start: spawn, connect, replay,
// flush. On success it installs the new link and hands off to the
// read loop and monitor goroutines.
func (s *Session) startOnce(ctx context.Context, generation int) error {
	// A previous run may have left its socket file behind; mpv
	// refuses to listen on an existing path.
	os.Remove(s.socketPath)

	handle, err := s.launcher.launch(s.config.Binary, mergeArgs(s.config.Args, s.socketPath))
	if err != nil {
		return &SpawnError{Err: err, ExitCode: -1}
	}
	s.logger.Debug("player process spawned", "pid", handle.pid(), "socket", s.socketPath)

	s.mu.Lock()
	if s.stopping || s.generation != generation {
		s.mu.Unlock()
		handle.kill()
		<-handle.done()
		return ErrSessionClosed
	}
	s.connState = ConnConnecting
	s.mu.Unlock()

	conn, err := s.connect(ctx, handle)
	if err != nil {
		s.mu.Lock()
		if s.connState == ConnConnecting {
			s.connState = ConnDisconnected
		}
		s.mu.Unlock()
		handle.kill()
		<-handle.done()
		return err
	}

	s.mu.Lock()
	if s.stopping || s.generation != generation {
		if s.connState == ConnConnecting {
			s.connState = ConnDisconnected
		}
		s.mu.Unlock()
		conn.Close()
		handle.kill()
		<-handle.done()
		return ErrSessionClosed
	}
	newLink := &link{generation: generation, handle: handle, conn: conn, lost: make(chan struct{})}
	s.link = newLink
	s.conn = conn
	s.connState = ConnReady
	s.state = StateStarted
	s.starts++
	restarts := s.starts - 1
	s.replayObservationsLocked()
	s.flushQueueLocked()
	s.mu.Unlock()

	go s.readLoop(newLink, conn)
	go s.monitor(newLink)

	s.logger.Info("player session ready", "pid", handle.pid(), "socket", s.socketPath, "restarts", restarts)
	if restarts > 0 && s.config.OnRestart != nil {
		s.config.OnRestart(restarts)
	}
	return nil
}

// monitor waits for the current generation to fail — process exit or
// connection loss, whichever comes first — and applies the recovery
// policy: kill whatever is left, fail the requests whose replies can
// no longer arrive, and start a fresh generation. Retry pacing lives
// in the connect loop; a restart that fails leaves the session in
// StateErrored and reports through OnError.
func (s *Session) monitor(monitored *link) {
	var cause error
	select {
	case <-monitored.handle.done():
		if signal := monitored.handle.signal(); signal != "" {
			cause = fmt.Errorf("player process killed by %s", signal)
		} else {
			cause = fmt.Errorf("player process exited with code %d", monitored.handle.exitCode())
		}
	case <-monitored.lost:
		cause = monitored.cause
	}

	s.mu.Lock()
	if s.stopping || s.link != monitored {
		s.mu.Unlock()
		return
	}
	s.link = nil
	s.conn = nil
	s.connState = ConnDisconnected
	s.state = StateStarting
	s.generation++
	generation := s.generation
	s.rejectInFlightLocked(ErrConnectionLost)
	s.mu.Unlock()

	monitored.conn.Close()
	// The socket can drop while the process lives on. Recovery is a
	// fresh subprocess either way, so make sure the old one is gone.
	select {
	case <-monitored.handle.done():
	default:
		monitored.handle.kill()
		<-monitored.handle.done()
	}

	s.logger.Warn("player session lost, restarting", "cause", cause)
	if err := s.startOnce(context.Background(), generation); err != nil {
		s.mu.Lock()
		if s.generation == generation {
			s.state = StateErrored
		}
		s.mu.Unlock()
		s.reportError(fmt.Errorf("restarting player after failure (%v): %w", cause, err))
	}
}

// defaultArgs are appended to the subprocess command line unless the
// caller supplied the same option key: keep running on an empty
// playlist, skip user config files, degrade to null audio output when
// no device is usable, and keep message noise down.
var defaultArgs = [][2]string{
	{"--idle", "--idle=yes"},
	{"--no-config", "--no-config"},
	{"--audio-fallback-to-null", "--audio-fallback-to-null=yes"},
	{"--msg-level", "--msg-level=all=warn"},
}

// mergeArgs builds the subprocess argument list: caller args first,
// then the session's --input-ipc-server endpoint, then each default
// whose option key the caller did not supply. A caller-supplied
// --input-ipc-server is dropped; the session must own the endpoint it
// dials.
func mergeArgs(callerArgs []string, socketPath string) []string {
	seen := make(map[string]bool, len(callerArgs))
	merged := make([]string, 0, len(callerArgs)+len(defaultArgs)+1)
	for _, arg := range callerArgs {
		key := optionKey(arg)
		if key == "--input-ipc-server" {
			continue
		}
		if key != "" {
			seen[key] = true
		}
		merged = append(merged, arg)
	}
	merged = append(merged, "--input-ipc-server="+socketPath)
	for _, def := range defaultArgs {
		if !seen[def[0]] {
			merged = append(merged, def[1])
		}
	}
	return merged
}

// optionKey returns the option part of a --key=value argument, or ""
// for positional arguments.
func optionKey(arg string) string {
	if !strings.HasPrefix(arg, "--") {
		return ""
	}
	if index := strings.IndexByte(arg, '='); index >= 0 {
		return arg[:index]
	}
	return arg
}

// execLauncher spawns real player processes.
type execLauncher struct{}

func (execLauncher) launch(binary string, args []string) (procHandle, error) {
	cmd := exec.Command(binary, args...)
	stderrTail := newTailBuffer(stderrLimit)
	cmd.Stderr = stderrTail
	// The IPC socket is the only channel; stdin and stdout are unused.
	cmd.Stdin = nil
	cmd.Stdout = nil

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	handle := &execHandle{
		process:    cmd.Process,
		stderrTail: stderrTail,
		doneCh:     make(chan struct{}),
	}
	go func() {
		code, signal := process.ExitStatus(cmd.Wait())
		handle.exitCode_ = code
		handle.signal_ = signal
		close(handle.doneCh)
	}()
	return handle, nil
}

type execHandle struct {
	process    *os.Process
	stderrTail *tailBuffer
	doneCh     chan struct{}

	// Written by the reaper goroutine before doneCh closes.
	exitCode_ int
	signal_   string
}

func (h *execHandle) done() <-chan struct{}  { return h.doneCh }
func (h *execHandle) exitCode() int          { return h.exitCode_ }
func (h *execHandle) signal() string         { return h.signal_ }
func (h *execHandle) stderr() string         { return h.stderrTail.String() }
func (h *execHandle) pid() int               { return h.process.Pid }
func (h *execHandle) osProcess() *os.Process { return h.process }

func (h *execHandle) terminate() error {
	return h.process.Signal(unix.SIGTERM)
}

func (h *execHandle) kill() error {
	return h.process.Kill()
}

// tailBuffer is an io.Writer that retains only the last max bytes
// written. Safe for concurrent use.
type tailBuffer struct {
	mu   sync.Mutex
	max  int
	data []byte
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, p...)
	if len(b.data) > b.max {
		b.data = b.data[len(b.data)-b.max:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.data)
}
