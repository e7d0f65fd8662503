// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package transcript records IPC wire traffic for post-mortem
// debugging. A transcript is a zstd-compressed stream of CBOR entries,
// one per frame, each carrying a timestamp, a direction, and the frame
// bytes exactly as they crossed the socket. CBOR keeps the frames
// byte-faithful without JSON re-escaping; zstd keeps hours of
// property-change chatter small.
package transcript

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/strand-media/mpvhost/lib/clock"
)

// Direction tells which way a frame crossed the socket.
type Direction string

const (
	// DirectionOutbound is a command frame written to the player.
	DirectionOutbound Direction = "out"
	// DirectionInbound is a reply or event frame read from the player.
	DirectionInbound Direction = "in"
)

// Entry is one recorded frame.
type Entry struct {
	// Time is when the frame was recorded.
	Time time.Time `cbor:"time"`

	// Direction is DirectionOutbound or DirectionInbound.
	Direction Direction `cbor:"direction"`

	// Frame is the frame bytes without the line terminator.
	Frame []byte `cbor:"frame"`
}

// encMode uses Core Deterministic Encoding so identical traffic
// produces identical transcript bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("transcript: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("transcript: CBOR decoder initialization failed: " + err.Error())
	}
}

// Writer appends entries to a transcript stream. Safe for concurrent
// use; the session records from its issue path and its read loop.
type Writer struct {
	clock clock.Clock

	mu      sync.Mutex
	zstd    *zstd.Encoder
	encoder *cbor.Encoder
	file    io.Closer
	closed  bool
}

// NewWriter wraps w in a transcript writer. The caller keeps ownership
// of w; Close flushes the compressed stream but does not close w.
func NewWriter(w io.Writer, clk clock.Clock) (*Writer, error) {
	if clk == nil {
		clk = clock.Real()
	}
	compressor, err := zstd.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("creating transcript compressor: %w", err)
	}
	return &Writer{
		clock:   clk,
		zstd:    compressor,
		encoder: encMode.NewEncoder(compressor),
	}, nil
}

// Create opens (truncating) a transcript file at path.
func Create(path string, clk clock.Clock) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating transcript file: %w", err)
	}
	writer, err := NewWriter(file, clk)
	if err != nil {
		file.Close()
		return nil, err
	}
	writer.file = file
	return writer, nil
}

// Record appends one frame.
func (w *Writer) Record(direction Direction, frame []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.New("transcript writer closed")
	}
	entry := Entry{
		Time:      w.clock.Now(),
		Direction: direction,
		Frame:     append([]byte(nil), frame...),
	}
	if err := w.encoder.Encode(entry); err != nil {
		return fmt.Errorf("encoding transcript entry: %w", err)
	}
	return nil
}

// Close flushes the compressed stream and, for writers from Create,
// closes the underlying file. Idempotent.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.zstd.Close()
	if w.file != nil {
		if closeErr := w.file.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}

// Reader iterates over the entries of a transcript stream.
type Reader struct {
	zstd    *zstd.Decoder
	decoder *cbor.Decoder
	file    io.Closer
}

// NewReader wraps r. The caller keeps ownership of r.
func NewReader(r io.Reader) (*Reader, error) {
	decompressor, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating transcript decompressor: %w", err)
	}
	return &Reader{
		zstd:    decompressor,
		decoder: decMode.NewDecoder(decompressor.IOReadCloser()),
	}, nil
}

// Open opens a transcript file at path.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript file: %w", err)
	}
	reader, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	reader.file = file
	return reader, nil
}

// Next returns the next entry, or io.EOF at the end of the stream.
func (r *Reader) Next() (Entry, error) {
	var entry Entry
	if err := r.decoder.Decode(&entry); err != nil {
		if errors.Is(err, io.EOF) {
			return Entry{}, io.EOF
		}
		return Entry{}, fmt.Errorf("decoding transcript entry: %w", err)
	}
	return entry, nil
}

// Close releases the decompressor and, for readers from Open, closes
// the underlying file.
func (r *Reader) Close() error {
	r.zstd.Close()
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}
