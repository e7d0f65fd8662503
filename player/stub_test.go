// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package player

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/strand-media/mpvhost/lib/testutil"
)

// receivedCommand is one outbound frame as the stub player saw it.
type receivedCommand struct {
	RequestID int64 `json:"request_id"`
	Command   []any `json:"command"`
}

// name returns the command name, or "" for a malformed frame.
func (c receivedCommand) name() string {
	if len(c.Command) == 0 {
		return ""
	}
	name, _ := c.Command[0].(string)
	return name
}

// replyFunc decides what frames the stub sends back for one received
// command. Returning nil sends nothing (the command stays pending).
type replyFunc func(command receivedCommand) []string

// successReply acknowledges a command with the given data payload.
func successReply(id int64, data string) string {
	return fmt.Sprintf(`{"request_id":%d,"error":"success","data":%s}`, id, data)
}

// defaultReply acknowledges everything with null data.
func defaultReply(command receivedCommand) []string {
	return []string{successReply(command.RequestID, "null")}
}

// fakeLauncher satisfies the session's launcher seam with an
// in-process stub player: each launch starts a goroutine serving the
// line-JSON protocol on the unix socket parsed from the argument list.
type fakeLauncher struct {
	t     *testing.T
	reply replyFunc

	// failSpawn, when set, makes launch itself fail.
	failSpawn error

	// exitImmediately makes the spawned handle die with the given
	// stderr before listening, as a crashing binary would.
	exitImmediately bool
	exitStderr      string

	// neverListen makes the spawned handle stay alive without ever
	// opening its IPC socket, as a wedged binary would.
	neverListen bool

	// ignoreTerminate makes handles shrug off SIGTERM so only kill
	// brings them down, as a hung binary would.
	ignoreTerminate bool

	mu      sync.Mutex
	handles []*fakeHandle
	spawns  chan *fakeHandle
}

func newFakeLauncher(t *testing.T) *fakeLauncher {
	return &fakeLauncher{t: t, reply: defaultReply, spawns: make(chan *fakeHandle, 16)}
}

func (l *fakeLauncher) launch(binary string, args []string) (procHandle, error) {
	if l.failSpawn != nil {
		return nil, l.failSpawn
	}
	socketPath := ""
	for _, arg := range args {
		if path, ok := strings.CutPrefix(arg, "--input-ipc-server="); ok {
			socketPath = path
		}
	}
	if socketPath == "" {
		l.t.Errorf("launch args missing --input-ipc-server: %v", args)
	}

	handle := &fakeHandle{
		reply:           l.reply,
		ignoreTerminate: l.ignoreTerminate,
		doneCh:          make(chan struct{}),
		received:        make(chan receivedCommand, 64),
	}
	switch {
	case l.exitImmediately:
		handle.stderrText = l.exitStderr
		handle.exit(1, "")
	case l.neverListen:
		// Stay alive, never listen.
	default:
		// Bind before launch returns so the session's first dial
		// attempt always finds the socket.
		listener, err := net.Listen("unix", socketPath)
		if err != nil {
			handle.stderrText = "cannot create IPC socket: " + err.Error()
			handle.exit(1, "")
			break
		}
		handle.mu.Lock()
		handle.listener = listener
		handle.mu.Unlock()
		go handle.serve(listener)
	}

	l.mu.Lock()
	l.handles = append(l.handles, handle)
	l.mu.Unlock()
	l.spawns <- handle
	return handle, nil
}

// waitSpawn returns the next spawned handle, failing the test if none
// appears in time.
func (l *fakeLauncher) waitSpawn(t *testing.T) *fakeHandle {
	t.Helper()
	return testutil.RequireReceive(t, l.spawns, 5*time.Second, "waiting for stub player spawn")
}

// fakeHandle is one stub player instance: a procHandle plus the
// serving goroutine's state.
type fakeHandle struct {
	reply           replyFunc
	ignoreTerminate bool

	mu         sync.Mutex
	listener   net.Listener
	conn       net.Conn
	stderrText string
	exitCode_  int
	signal_    string

	exitOnce sync.Once
	doneCh   chan struct{}

	// received carries every parsed command frame in arrival order.
	received chan receivedCommand
}

func (h *fakeHandle) serve(listener net.Listener) {
	conn, err := listener.Accept()
	if err != nil {
		return // closed by exit
	}
	h.mu.Lock()
	h.conn = conn
	h.mu.Unlock()

	decoder := json.NewDecoder(conn)
	for {
		var command receivedCommand
		if err := decoder.Decode(&command); err != nil {
			return
		}
		h.received <- command
		if h.reply == nil {
			continue
		}
		for _, frame := range h.reply(command) {
			h.send(frame)
		}
	}
}

// send writes one raw frame to the connected session, waiting briefly
// for the session's dial to be accepted. No-op when no connection
// appears (e.g. after a crash).
func (h *fakeHandle) send(frame string) {
	deadline := time.Now().Add(5 * time.Second)
	for {
		h.mu.Lock()
		conn := h.conn
		h.mu.Unlock()
		if conn != nil {
			conn.Write([]byte(frame + "\n"))
			return
		}
		select {
		case <-h.doneCh:
			return
		default:
		}
		if time.Now().After(deadline) {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

// waitCommand returns the next command the stub received whose name
// matches, discarding others.
func (h *fakeHandle) waitCommand(t *testing.T, name string) receivedCommand {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case command := <-h.received:
			if command.name() == name {
				return command
			}
		case <-deadline:
			t.Fatalf("timed out waiting for command %q", name)
		}
	}
}

// exit simulates process death: tears down the socket and marks the
// handle reaped.
func (h *fakeHandle) exit(code int, signal string) {
	h.exitOnce.Do(func() {
		h.mu.Lock()
		h.exitCode_ = code
		h.signal_ = signal
		listener := h.listener
		conn := h.conn
		h.conn = nil
		h.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		if listener != nil {
			listener.Close()
		}
		close(h.doneCh)
	})
}

// crash simulates an abnormal death, as if the player segfaulted.
func (h *fakeHandle) crash() { h.exit(-1, "SIGSEGV") }

func (h *fakeHandle) done() <-chan struct{} { return h.doneCh }

func (h *fakeHandle) exitCode() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitCode_
}

func (h *fakeHandle) signal() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.signal_
}

func (h *fakeHandle) stderr() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stderrText
}

func (h *fakeHandle) pid() int { return 4242 }

func (h *fakeHandle) osProcess() *os.Process { return nil }

func (h *fakeHandle) terminate() error {
	if h.ignoreTerminate {
		return nil
	}
	h.exit(-1, "SIGTERM")
	return nil
}

func (h *fakeHandle) kill() error {
	h.exit(-1, "SIGKILL")
	return nil
}
