// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"
)

// Records arrive from the event loop, the read loop, and the monitor
// goroutine at once; every line must still come out whole.
func TestRecordStreamInterleavesWholeLines(t *testing.T) {
	var buffer lockedBuffer
	stream := newRecordStream(&buffer)

	const writers = 8
	const perWriter = 50
	var group sync.WaitGroup
	for w := 0; w < writers; w++ {
		group.Add(1)
		go func(w int) {
			defer group.Done()
			for i := 0; i < perWriter; i++ {
				stream.write(record{
					Time: time.Now(),
					Kind: "property",
					Name: fmt.Sprintf("writer-%d", w),
					Value: json.RawMessage(
						fmt.Sprintf(`{"sequence":%d,"padding":%q}`, i, bytes.Repeat([]byte("x"), 256))),
				})
			}
		}(w)
	}
	group.Wait()

	lines := 0
	scanner := bufio.NewScanner(bytes.NewReader(buffer.Bytes()))
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)
	for scanner.Scan() {
		var decoded record
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("line %d is not valid JSON: %v\n%s", lines+1, err, scanner.Text())
		}
		if decoded.Kind != "property" {
			t.Fatalf("line %d mangled: kind = %q", lines+1, decoded.Kind)
		}
		lines++
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scanning output: %v", err)
	}
	if lines != writers*perWriter {
		t.Errorf("got %d lines, want %d", lines, writers*perWriter)
	}
}

// lockedBuffer makes the destination itself safe, so the test only
// observes interleaving introduced above it.
type lockedBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buffer.Bytes()...)
}
