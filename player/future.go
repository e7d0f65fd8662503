// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package player

import (
	"context"
	"encoding/json"
	"sync"
)

// Future is the handle for one in-flight command. It completes exactly
// once: with the reply's data payload on success, or with an error
// when the player reports failure, the connection drops, or the
// session is torn down.
type Future struct {
	done chan struct{}

	once  sync.Once
	value json.RawMessage
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// complete resolves or rejects the future. Later calls are no-ops, so
// a reply racing a teardown cannot double-complete.
func (f *Future) complete(value json.RawMessage, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// Done returns a channel that is closed when the future completes.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the future completes or ctx is cancelled. On
// success it returns the reply's data payload as raw JSON (which may
// be nil for commands that return nothing).
func (f *Future) Wait(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
