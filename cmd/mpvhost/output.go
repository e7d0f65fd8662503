// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// record is one JSON line on stdout.
type record struct {
	Time     time.Time       `json:"time"`
	Kind     string          `json:"kind"` // "event", "property", "restart"
	Name     string          `json:"name,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
	Restarts int             `json:"restarts,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// recordStream writes records as JSON lines. Records arrive from the
// main event loop, from property callbacks on the session's read loop,
// and from the restart callback on the monitor goroutine, so writes
// are serialized under a lock.
type recordStream struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func newRecordStream(w io.Writer) *recordStream {
	return &recordStream{encoder: json.NewEncoder(w)}
}

func (s *recordStream) write(r record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.encoder.Encode(r)
}
