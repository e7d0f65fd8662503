// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability. Production code takes
// a Clock instead of calling the time package directly; tests inject
// a Fake with deterministic control over when timers fire.
package clock

import "time"

// Clock is the time surface the runtime needs: wall-clock reads for
// elapsed-time accounting, one-shot timers, and sleeps for retry
// pacing.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives once duration d elapses.
	// If d <= 0 the channel receives immediately.
	After(d time.Duration) <-chan time.Time

	// Sleep pauses the calling goroutine for at least d.
	Sleep(d time.Duration)
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (realClock) Sleep(d time.Duration) { time.Sleep(d) }
