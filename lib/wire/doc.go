// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire implements the line-delimited JSON protocol spoken over
// mpv's --input-ipc-server socket. Both directions are one JSON object
// per line: outbound frames carry a request id and a command argument
// list, inbound frames are either command replies (correlated by
// request id) or asynchronous events.
//
// The package is deliberately dumb about command semantics: it frames
// and parses, nothing more. Command construction lives in
// lib/playercmd; routing of parsed frames lives in the player package.
package wire
