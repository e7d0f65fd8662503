// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/strand-media/mpvhost/lib/playercmd"
	"github.com/strand-media/mpvhost/player"
)

// Session is the slice of the player session the bridge exposes.
type Session interface {
	Command(ctx context.Context, command playercmd.Command) (json.RawMessage, error)
	ObserveProperty(name string, callback player.PropertyCallback) (unsubscribe func())
	Events() <-chan player.Event
}

// clientMessage is one inbound frame from a websocket client.
type clientMessage struct {
	Op   string `json:"op"`
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Args []any  `json:"args,omitempty"`
}

// serverMessage is one outbound frame to a websocket client.
type serverMessage struct {
	Op    string          `json:"op"`
	ID    int64           `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Bridge serves one player session to websocket clients.
type Bridge struct {
	// ListenAddr is the TCP address to listen on (e.g. "127.0.0.1:6600").
	ListenAddr string

	// Session is the player session to expose.
	Session Session

	// Logger receives structured log output. If nil, slog.Default() is
	// used. Per-client events are logged at Debug level; lifecycle at
	// Info.
	Logger *slog.Logger

	listener net.Listener
	server   *http.Server
	cancel   context.CancelFunc
	done     chan struct{}

	mu      sync.Mutex
	clients map[*client]struct{}
}

// client is one connected websocket, its outbound queue, and its
// property subscriptions.
type client struct {
	conn *websocket.Conn

	mu       sync.Mutex
	send     chan serverMessage
	sendOpen bool
	observes map[string]func()
}

func (b *Bridge) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

// Start binds the listener and begins serving websocket clients in the
// background. It returns once the listener is accepting, or an error
// if binding fails.
func (b *Bridge) Start(ctx context.Context) error {
	if b.ListenAddr == "" {
		return fmt.Errorf("bridge: ListenAddr is required")
	}
	if b.Session == nil {
		return fmt.Errorf("bridge: Session is required")
	}

	listener, err := net.Listen("tcp", b.ListenAddr)
	if err != nil {
		return fmt.Errorf("bridge: failed to listen on %s: %w", b.ListenAddr, err)
	}
	b.listener = listener
	b.clients = make(map[*client]struct{})

	ctx, b.cancel = context.WithCancel(ctx)
	b.done = make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		b.handleClient(ctx, w, r)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	b.server = &http.Server{Handler: mux}

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		b.server.Serve(listener)
	}()
	go func() {
		defer close(b.done)
		b.broadcastEvents(ctx)
		<-serverDone
	}()

	b.logger().Info("bridge started", "listen_addr", listener.Addr().String())
	return nil
}

// Addr returns the listener's address, useful when binding to port 0.
// Returns nil if the bridge has not been started.
func (b *Bridge) Addr() net.Addr {
	if b.listener == nil {
		return nil
	}
	return b.listener.Addr()
}

// Stop disconnects every client, closes the listener, and waits for
// the handlers to drain.
func (b *Bridge) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	if b.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		b.server.Shutdown(ctx)
		cancel()
	}
	b.mu.Lock()
	for c := range b.clients {
		c.conn.Close(websocket.StatusGoingAway, "bridge shutting down")
	}
	b.mu.Unlock()
	if b.done != nil {
		<-b.done
	}
}

// broadcastEvents pumps the session's event channel to every connected
// client until the context is cancelled.
func (b *Bridge) broadcastEvents(ctx context.Context) {
	events := b.Session.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			message := serverMessage{Op: "event", Name: event.Name, Data: event.Data}
			b.mu.Lock()
			for c := range b.clients {
				c.trySend(message)
			}
			b.mu.Unlock()
		}
	}
}

// handleClient upgrades one HTTP request and runs its read loop until
// the client disconnects.
func (b *Bridge) handleClient(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		b.logger().Debug("websocket accept failed", "error", err)
		return
	}

	c := &client{
		conn:     conn,
		send:     make(chan serverMessage, 64),
		sendOpen: true,
		observes: make(map[string]func()),
	}
	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()
	b.logger().Debug("client connected", "remote", r.RemoteAddr)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop(ctx)
	}()

	defer func() {
		b.mu.Lock()
		delete(b.clients, c)
		b.mu.Unlock()
		c.dropObservations()
		c.closeSend()
		<-writerDone
		conn.Close(websocket.StatusNormalClosure, "done")
		b.logger().Debug("client disconnected", "remote", r.RemoteAddr)
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var message clientMessage
		if err := json.Unmarshal(data, &message); err != nil {
			c.trySend(serverMessage{Op: "error", Error: fmt.Sprintf("malformed message: %v", err)})
			continue
		}
		b.handleMessage(ctx, c, message)
	}
}

// handleMessage applies one client frame.
func (b *Bridge) handleMessage(ctx context.Context, c *client, message clientMessage) {
	switch message.Op {
	case "command":
		command, err := playercmd.Raw(message.Name, message.Args...)
		if err != nil {
			c.trySend(serverMessage{Op: "result", ID: message.ID, Error: err.Error()})
			return
		}
		// Run the command off the read loop so a slow player does not
		// stall the client's other traffic.
		go func() {
			data, err := b.Session.Command(ctx, command)
			result := serverMessage{Op: "result", ID: message.ID, Data: data}
			if err != nil {
				result.Error = err.Error()
			}
			c.trySend(result)
		}()

	case "observe":
		c.mu.Lock()
		if _, exists := c.observes[message.Name]; !exists {
			name := message.Name
			c.observes[name] = b.Session.ObserveProperty(name, func(value json.RawMessage) {
				c.trySend(serverMessage{Op: "property", Name: name, Value: value})
			})
		}
		c.mu.Unlock()

	case "unobserve":
		c.mu.Lock()
		cancel := c.observes[message.Name]
		delete(c.observes, message.Name)
		c.mu.Unlock()
		if cancel != nil {
			cancel()
		}

	default:
		c.trySend(serverMessage{Op: "error", Error: fmt.Sprintf("unknown op %q", message.Op)})
	}
}

// trySend queues one outbound frame, dropping it if the client's queue
// is full or already torn down. Dropping beats stalling the session's
// callbacks behind a slow client.
func (c *client) trySend(message serverMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.sendOpen {
		return
	}
	select {
	case c.send <- message:
	default:
	}
}

// closeSend closes the outbound queue exactly once, under the same
// lock trySend holds, so no send can race the close.
func (c *client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendOpen {
		c.sendOpen = false
		close(c.send)
	}
}

// writeLoop drains the send queue onto the wire.
func (c *client) writeLoop(ctx context.Context) {
	for message := range c.send {
		data, err := json.Marshal(message)
		if err != nil {
			continue
		}
		if err := c.conn.Write(ctx, websocket.MessageText, data); err != nil {
			return
		}
	}
}

// dropObservations cancels every property subscription the client made.
func (c *client) dropObservations() {
	c.mu.Lock()
	cancels := make([]func(), 0, len(c.observes))
	for _, cancel := range c.observes {
		cancels = append(cancels, cancel)
	}
	c.observes = map[string]func(){}
	c.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}
