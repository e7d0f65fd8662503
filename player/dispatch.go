// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package player

import (
	"fmt"

	"github.com/strand-media/mpvhost/lib/wire"
)

// dispatch routes one parsed inbound frame: property-change events to
// the observation registry, other events to the pass-through channel,
// replies to their pending request.
func (s *Session) dispatch(message wire.Message) {
	switch {
	case message.Event == wire.EventPropertyChange:
		s.dispatchPropertyChange(message)
	case message.IsEvent():
		s.emitEvent(Event{Name: message.Event, Data: message.Raw})
	case message.HasRequestID:
		s.resolveReply(message)
	default:
		s.logger.Debug("discarding frame with neither event nor request_id", "frame", string(message.Raw))
	}
}

// dispatchPropertyChange fans a property-change event out to every
// callback subscribed to the property, by name. Callbacks run on the
// read loop, outside the session lock.
func (s *Session) dispatchPropertyChange(message wire.Message) {
	s.mu.Lock()
	var callbacks []PropertyCallback
	if entry, ok := s.observations[message.Name]; ok {
		callbacks = make([]PropertyCallback, 0, len(entry.subscribers))
		for _, callback := range entry.subscribers {
			callbacks = append(callbacks, callback)
		}
	}
	s.mu.Unlock()

	for _, callback := range callbacks {
		callback(message.Data)
	}
}

// resolveReply completes the pending request matching a reply frame.
// A reply with no matching request is a late arrival after teardown or
// restart: failures surface as a generic error, successes are silently
// dropped.
func (s *Session) resolveReply(message wire.Message) {
	s.mu.Lock()
	request, ok := s.pending[message.RequestID]
	delete(s.pending, message.RequestID)
	s.mu.Unlock()

	if !ok {
		if !message.IsSuccess() {
			s.reportError(fmt.Errorf("unmatched reply for request %d: %s", message.RequestID, message.Error))
		}
		return
	}
	if message.IsSuccess() {
		request.future.complete(message.Data, nil)
		return
	}
	request.future.complete(nil, &CommandError{Command: request.command, Reason: message.Error})
}

// emitEvent delivers a pass-through event without blocking the read
// loop. A full buffer drops the event; command replies and property
// dispatch must not stall behind a slow event consumer.
func (s *Session) emitEvent(event Event) {
	select {
	case s.events <- event:
	default:
		s.logger.Debug("event buffer full, dropping event", "event", event.Name)
	}
}
