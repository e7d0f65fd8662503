// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/json"
	"fmt"
)

// ErrorSuccess is the error string mpv puts on a reply frame when the
// command succeeded. Any other value is the player's failure reason.
const ErrorSuccess = "success"

// EventPropertyChange is the event name mpv uses for property-change
// notifications registered via observe_property.
const EventPropertyChange = "property-change"

// Request is one outbound command frame.
type Request struct {
	// RequestID correlates this frame with exactly one reply frame.
	// Session-scoped, strictly increasing, never reused.
	RequestID int64 `json:"request_id"`

	// Command is the command name followed by its arguments, in the
	// positional order mpv expects.
	Command []any `json:"command"`
}

// Encode marshals the request as a single line-terminated JSON object.
// Nil entries in the argument list represent absent optional arguments
// and are stripped before encoding; mpv treats a trailing null as a
// real argument, not an omission.
func (r Request) Encode() ([]byte, error) {
	arguments := make([]any, 0, len(r.Command))
	for _, argument := range r.Command {
		if argument == nil {
			continue
		}
		arguments = append(arguments, argument)
	}
	encoded, err := json.Marshal(Request{RequestID: r.RequestID, Command: arguments})
	if err != nil {
		return nil, fmt.Errorf("encoding request %d: %w", r.RequestID, err)
	}
	return append(encoded, '\n'), nil
}

// Message is one parsed inbound frame. Exactly one of the two shapes
// is populated: reply frames carry RequestID/Error/Data, event frames
// carry Event (and for property-change, Name and Data).
type Message struct {
	// RequestID is the id of the request this frame replies to.
	// Meaningful only when HasRequestID is true.
	RequestID int64

	// HasRequestID distinguishes a reply to request 0 from a frame
	// with no request_id field at all. mpv request ids start at 1,
	// but the distinction keeps the dispatcher honest.
	HasRequestID bool

	// Error is the reply status: ErrorSuccess or a failure reason.
	// Empty on event frames.
	Error string

	// Data is the reply payload or the property-change value, as raw
	// JSON. Nil when the frame carried no data field.
	Data json.RawMessage

	// Event is the event name on event frames, empty on replies.
	Event string

	// Name is the observed property name on property-change events.
	Name string

	// Raw is the complete frame as received, for pass-through event
	// delivery and diagnostics.
	Raw json.RawMessage
}

// IsEvent reports whether the frame is an asynchronous event rather
// than a command reply.
func (m *Message) IsEvent() bool { return m.Event != "" }

// IsSuccess reports whether a reply frame carries a success status.
func (m *Message) IsSuccess() bool { return m.Error == ErrorSuccess }

// ProtocolError wraps a line that failed to parse as JSON. The line is
// discarded; later lines are unaffected.
type ProtocolError struct {
	// Line is the offending input, without its terminator.
	Line []byte

	// Err is the underlying JSON error.
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("malformed frame %q: %v", e.Line, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// inboundFrame mirrors the union of fields mpv puts on inbound frames.
type inboundFrame struct {
	RequestID *int64          `json:"request_id"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	Event     string          `json:"event"`
	Name      string          `json:"name"`
}

// ParseLine parses one frame. The input must be a single line without
// its terminator. Returns a *ProtocolError when the line is not a JSON
// object; the caller discards the line and continues with the next.
func ParseLine(line []byte) (Message, error) {
	var frame inboundFrame
	if err := json.Unmarshal(line, &frame); err != nil {
		return Message{}, &ProtocolError{Line: append([]byte(nil), line...), Err: err}
	}
	message := Message{
		Error: frame.Error,
		Data:  frame.Data,
		Event: frame.Event,
		Name:  frame.Name,
		Raw:   append(json.RawMessage(nil), line...),
	}
	if frame.RequestID != nil {
		message.RequestID = *frame.RequestID
		message.HasRequestID = true
	}
	return message, nil
}
