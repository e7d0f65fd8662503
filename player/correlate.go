// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package player

import (
	"fmt"

	"github.com/strand-media/mpvhost/lib/playercmd"
	"github.com/strand-media/mpvhost/lib/transcript"
	"github.com/strand-media/mpvhost/lib/wire"
)

// pendingRequest is one issued command that has not completed. It
// lives either in the outbound queue (composed but not yet written) or
// in the pending map (written, awaiting its reply) — never both.
type pendingRequest struct {
	id      int64
	command playercmd.Command
	payload []byte
	future  *Future
}

// Issue sends a command without waiting for its reply. The returned
// Future completes when the reply arrives, the connection is lost, or
// the session is torn down. If the connection is not ready the command
// is queued and written, in submission order, once it is.
func (s *Session) Issue(command playercmd.Command) *Future {
	future := newFuture()
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		future.complete(nil, fmt.Errorf("%q: %w", command.String(), ErrSessionClosed))
		return future
	}
	s.issueLocked(command, future)
	s.mu.Unlock()
	return future
}

// issueLocked allocates the next request id and either writes the
// frame immediately or queues it. Ids start at 1, strictly increase,
// and are never reused within the session's lifetime.
func (s *Session) issueLocked(command playercmd.Command, future *Future) {
	s.nextRequestID++
	id := s.nextRequestID

	payload, err := wire.Request{RequestID: id, Command: command.Args()}.Encode()
	if err != nil {
		future.complete(nil, fmt.Errorf("%q: %w", command.String(), err))
		return
	}
	request := &pendingRequest{id: id, command: command, payload: payload, future: future}

	if s.connState == ConnReady {
		s.pending[id] = request
		s.writeLocked(request)
		return
	}
	s.queue = append(s.queue, request)
}

// writeLocked writes one already-pending request to the connection. A
// write failure fails only this request; the broken connection itself
// is detected and recovered by the read loop and monitor.
func (s *Session) writeLocked(request *pendingRequest) {
	if _, err := s.conn.Write(request.payload); err != nil {
		delete(s.pending, request.id)
		request.future.complete(nil, fmt.Errorf("writing %q: %w", request.command.String(), err))
		return
	}
	s.transcribe(transcript.DirectionOutbound, request.payload[:len(request.payload)-1])
}

// flushQueueLocked drains the outbound queue onto a ready connection
// in submission order, moving each entry into the pending map as it is
// written.
func (s *Session) flushQueueLocked() {
	for _, request := range s.queue {
		s.pending[request.id] = request
		s.writeLocked(request)
	}
	s.queue = nil
}

// rejectInFlightLocked fails every request that was written but not
// answered. Called on connection loss: those frames reached a socket
// that no longer exists and their fate is unknowable. Queued requests
// are left alone; they were never sent and are replayed on reconnect.
func (s *Session) rejectInFlightLocked(cause error) {
	for id, request := range s.pending {
		delete(s.pending, id)
		request.future.complete(nil, fmt.Errorf("%q: %w", request.command.String(), cause))
	}
}

// takeOutstandingLocked removes and returns every request that has not
// completed: in-flight and queued alike. Teardown rejects them all.
func (s *Session) takeOutstandingLocked() []*pendingRequest {
	outstanding := make([]*pendingRequest, 0, len(s.pending)+len(s.queue))
	for id, request := range s.pending {
		delete(s.pending, id)
		outstanding = append(outstanding, request)
	}
	outstanding = append(outstanding, s.queue...)
	s.queue = nil
	return outstanding
}
