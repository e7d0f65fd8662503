// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package bridge exposes a player session to websocket clients.
//
// The bridge listens on a TCP address and upgrades connections on /ws.
// Each client speaks a small JSON protocol:
//
//	→ {"op":"command","id":7,"name":"loadfile","args":["track.flac","replace"]}
//	← {"op":"result","id":7,"data":null}
//	→ {"op":"observe","name":"volume"}
//	← {"op":"property","name":"volume","value":55.0}
//	→ {"op":"unobserve","name":"volume"}
//
// Player events that are not property changes are broadcast to every
// connected client as {"op":"event","name":...,"data":...}. The "id"
// on a command is chosen by the client and echoed on its result; the
// bridge does not interpret it.
//
// [Bridge] is the single type. Start binds the listener and serves in
// a background goroutine; Addr returns the bound address (useful with
// port 0); Stop shuts the listener down, disconnects every client, and
// waits for the handlers to drain. One session serves any number of
// clients; property observations are per-client and are cancelled when
// the client disconnects.
package bridge
