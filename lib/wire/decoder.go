// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bufio"
	"bytes"
	"io"
)

// maxFrameLength bounds a single inbound frame. Property values are
// small; the largest realistic frames are playlist or track-list
// replies, which stay far below this.
const maxFrameLength = 4 * 1024 * 1024

// Decoder reads frames from a byte stream, splitting on LF (with an
// optional preceding CR) and parsing each line in isolation. Empty
// lines are skipped. A malformed line surfaces as a *ProtocolError
// from Next; the decoder itself remains usable for subsequent lines.
type Decoder struct {
	scanner *bufio.Scanner
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameLength)
	return &Decoder{scanner: scanner}
}

// Next returns the next parsed frame. It returns io.EOF when the
// stream ends cleanly, the underlying read error when the stream
// breaks, and a *ProtocolError when a single line is malformed (the
// decoder stays valid in that case).
func (d *Decoder) Next() (Message, error) {
	for d.scanner.Scan() {
		line := bytes.TrimSuffix(d.scanner.Bytes(), []byte{'\r'})
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		return ParseLine(line)
	}
	if err := d.scanner.Err(); err != nil {
		return Message{}, err
	}
	return Message{}, io.EOF
}
