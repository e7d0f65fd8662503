// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package player supervises a long-lived mpv subprocess and speaks its
// line-delimited JSON IPC protocol over a unix socket.
//
// A [Session] owns the full lifecycle: it spawns mpv with an injected
// --input-ipc-server endpoint, establishes the socket connection with
// bounded retry, correlates every outbound command with its reply,
// and multiplexes asynchronous player events to interested callers.
// When the subprocess dies the session respawns it, reconnects, and
// replays live property observations under their original subscription
// ids, so observers keep receiving updates without re-subscribing.
//
// The package is organized around that flow:
//
//   - session.go: public façade (Command, GetProperty, ObserveProperty, ...)
//   - supervisor.go: subprocess spawn, reap, and restart policy
//   - conn.go: socket dialing with retry and the inbound read loop
//   - correlate.go: request ids, pending requests, and the outbound queue
//   - observe.go: the property observation registry
//   - dispatch.go: routing of parsed inbound frames
//
// Commands issued before the connection is ready are queued and
// flushed in submission order once it is. Commands already written
// when a connection drops are failed with [ErrConnectionLost] rather
// than resent: a resend could execute a non-idempotent command twice
// if the player acted on it before crashing. Queued-but-unsent
// commands carry no such ambiguity and are replayed.
//
// Command round-trips have no internal timeout; pass a context with a
// deadline to Command/GetProperty/SetProperty when the caller must not
// wait indefinitely. Session teardown fails every outstanding command
// with [ErrSessionClosed].
package player
