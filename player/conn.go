// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package player

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/strand-media/mpvhost/lib/transcript"
	"github.com/strand-media/mpvhost/lib/wire"
)

// connect dials the session's unix socket until it succeeds, the
// subprocess dies, the accumulated elapsed time exceeds the configured
// timeout, or ctx is cancelled. The subprocess creates the socket
// asynchronously after spawn, so early dial failures are expected and
// retried on a short fixed interval.
func (s *Session) connect(ctx context.Context, handle procHandle) (net.Conn, error) {
	start := s.clock.Now()
	var lastError error
	for {
		if s.stoppingNow() {
			return nil, ErrSessionClosed
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-handle.done():
			return nil, &SpawnError{
				Stderr:   handle.stderr(),
				ExitCode: handle.exitCode(),
				Signal:   handle.signal(),
			}
		default:
		}

		conn, err := net.Dial("unix", s.socketPath)
		if err == nil {
			return conn, nil
		}
		lastError = err

		if s.clock.Now().Sub(start) > s.config.ConnectTimeout {
			return nil, &ConnectTimeoutError{Timeout: s.config.ConnectTimeout, LastError: lastError}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-handle.done():
			return nil, &SpawnError{
				Stderr:   handle.stderr(),
				ExitCode: handle.exitCode(),
				Signal:   handle.signal(),
			}
		case <-s.clock.After(connectRetryInterval):
		}
	}
}

// readLoop decodes inbound frames until the connection fails. A
// malformed line is reported and skipped; the stream stays usable.
// Any read error, including a clean EOF, marks the link lost and
// leaves recovery to the monitor.
func (s *Session) readLoop(owner *link, conn net.Conn) {
	decoder := wire.NewDecoder(conn)
	for {
		message, err := decoder.Next()
		if err != nil {
			var protocolError *wire.ProtocolError
			if errors.As(err, &protocolError) {
				s.reportError(protocolError)
				continue
			}
			if err == io.EOF {
				err = errors.New("player closed the IPC connection")
			}
			owner.markLost(err)
			return
		}
		s.transcribe(transcript.DirectionInbound, message.Raw)
		s.dispatch(message)
	}
}
