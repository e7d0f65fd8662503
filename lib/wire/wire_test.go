// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestEncodeRequest(t *testing.T) {
	request := Request{RequestID: 7, Command: []any{"loadfile", "/tmp/a.mkv", "replace"}}
	encoded, err := request.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{"request_id":7,"command":["loadfile","/tmp/a.mkv","replace"]}` + "\n"
	if string(encoded) != want {
		t.Errorf("Encode = %q, want %q", encoded, want)
	}
}

func TestEncodeStripsNilArguments(t *testing.T) {
	request := Request{RequestID: 1, Command: []any{"loadfile", "/tmp/a.mkv", nil}}
	encoded, err := request.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{"request_id":1,"command":["loadfile","/tmp/a.mkv"]}` + "\n"
	if string(encoded) != want {
		t.Errorf("Encode = %q, want %q", encoded, want)
	}
}

func TestParseLineReply(t *testing.T) {
	message, err := ParseLine([]byte(`{"request_id":3,"error":"success","data":0.5}`))
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if !message.HasRequestID || message.RequestID != 3 {
		t.Errorf("RequestID = %d (has=%v), want 3", message.RequestID, message.HasRequestID)
	}
	if !message.IsSuccess() {
		t.Errorf("IsSuccess = false, want true")
	}
	if message.IsEvent() {
		t.Errorf("IsEvent = true for a reply frame")
	}
	if string(message.Data) != "0.5" {
		t.Errorf("Data = %s, want 0.5", message.Data)
	}
}

func TestParseLinePropertyChange(t *testing.T) {
	message, err := ParseLine([]byte(`{"event":"property-change","id":1,"name":"volume","data":0.8}`))
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if !message.IsEvent() || message.Event != EventPropertyChange {
		t.Errorf("Event = %q, want %q", message.Event, EventPropertyChange)
	}
	if message.Name != "volume" {
		t.Errorf("Name = %q, want volume", message.Name)
	}
	if message.HasRequestID {
		t.Errorf("HasRequestID = true for an event frame")
	}
}

func TestParseLineMalformed(t *testing.T) {
	_, err := ParseLine([]byte(`{"request_id":`))
	var protocolError *ProtocolError
	if !errors.As(err, &protocolError) {
		t.Fatalf("error = %v, want *ProtocolError", err)
	}
	if string(protocolError.Line) != `{"request_id":` {
		t.Errorf("Line = %q, want the offending input", protocolError.Line)
	}
}

func TestDecoderSplitsAndIsolatesLines(t *testing.T) {
	input := "{\"event\":\"pause\"}\r\n" +
		"\n" +
		"not json\n" +
		"{\"request_id\":1,\"error\":\"success\"}\n"
	decoder := NewDecoder(strings.NewReader(input))

	first, err := decoder.Next()
	if err != nil {
		t.Fatalf("first Next: %v", err)
	}
	if first.Event != "pause" {
		t.Errorf("first Event = %q, want pause", first.Event)
	}

	// The malformed line is reported but must not poison the stream.
	_, err = decoder.Next()
	var protocolError *ProtocolError
	if !errors.As(err, &protocolError) {
		t.Fatalf("second Next error = %v, want *ProtocolError", err)
	}

	third, err := decoder.Next()
	if err != nil {
		t.Fatalf("third Next: %v", err)
	}
	if !third.HasRequestID || third.RequestID != 1 {
		t.Errorf("third RequestID = %d, want 1", third.RequestID)
	}

	if _, err := decoder.Next(); err != io.EOF {
		t.Errorf("final Next error = %v, want io.EOF", err)
	}
}
