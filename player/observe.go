// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package player

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/strand-media/mpvhost/lib/playercmd"
)

// observation is the registry entry for one observed property: its
// subscription id (assigned once, reused across reconnects) and the
// callbacks interested in it.
type observation struct {
	id          int64
	name        string
	subscribers map[int64]PropertyCallback
	nextToken   int64
}

// ObserveProperty registers callback for changes to the named
// property and returns an idempotent unsubscribe function.
//
// The first observer of a property allocates its subscription id and
// sends observe_property to the player; later observers of the same
// property share the registration, including ones that arrive while
// the first registration is still in flight. The registry re-sends
// observe_property with the same id after every reconnect, so the
// callback keeps firing across player restarts without re-observing.
//
// Registration failures are not returned here — registration is
// asynchronous — but are reported through OnError.
func (s *Session) ObserveProperty(name string, callback PropertyCallback) (unsubscribe func()) {
	s.mu.Lock()
	entry, ok := s.observations[name]
	if !ok {
		s.nextObserveID++
		entry = &observation{
			id:          s.nextObserveID,
			name:        name,
			subscribers: make(map[int64]PropertyCallback),
		}
		s.observations[name] = entry
		// When the connection is down the next connection-ready
		// replay registers the entry; queueing a subscribe here as
		// well would register the same id twice.
		if s.connState == ConnReady && !s.stopping {
			s.registerLocked(entry)
		}
	}
	entry.nextToken++
	token := entry.nextToken
	entry.subscribers[token] = callback
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.unobserve(name, token) })
	}
}

// registerLocked issues observe_property for an entry on the ready
// connection and watches the acknowledgment in the background.
func (s *Session) registerLocked(entry *observation) {
	future := newFuture()
	s.issueLocked(playercmd.ObserveProperty(entry.id, entry.name), future)
	go s.watchRegistration(entry.name, entry.id, future)
}

// watchRegistration removes the registry entry when the player refused
// the subscription, so a later observe can try again fresh. Transient
// failures (connection lost, teardown) keep the entry: reconnect
// replay or the next start re-registers it.
func (s *Session) watchRegistration(name string, id int64, future *Future) {
	if _, err := future.Wait(context.Background()); err != nil {
		var commandError *CommandError
		if errors.As(err, &commandError) {
			s.mu.Lock()
			if entry, ok := s.observations[name]; ok && entry.id == id {
				delete(s.observations, name)
			}
			s.mu.Unlock()
		}
		s.reportError(fmt.Errorf("observing property %q: %w", name, err))
	}
}

// replayObservationsLocked re-issues observe_property for every live
// entry under its original subscription id. Called on every
// connection-ready transition, before the outbound queue is flushed:
// the player's own subscription table died with the old process.
func (s *Session) replayObservationsLocked() {
	for _, entry := range s.observations {
		s.registerLocked(entry)
	}
}

// unobserve removes one subscriber. The last subscriber of a property
// tears the entry down and tells the player, best-effort: an
// unobserve_property failure is reported through OnError, never to the
// unsubscribing caller.
func (s *Session) unobserve(name string, token int64) {
	s.mu.Lock()
	entry, ok := s.observations[name]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(entry.subscribers, token)
	if len(entry.subscribers) > 0 {
		s.mu.Unlock()
		return
	}
	delete(s.observations, name)
	if s.stopping || s.connState != ConnReady {
		// No connection to tell; the dead entry simply is not
		// replayed on the next connect.
		s.mu.Unlock()
		return
	}
	future := newFuture()
	s.issueLocked(playercmd.UnobserveProperty(entry.id), future)
	s.mu.Unlock()

	go func() {
		if _, err := future.Wait(context.Background()); err != nil {
			s.reportError(fmt.Errorf("unobserving property %q: %w", name, err))
		}
	}()
}
