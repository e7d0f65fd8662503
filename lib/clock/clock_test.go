// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestFakeNowAdvance(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fake := Fake(start)
	if !fake.Now().Equal(start) {
		t.Errorf("Now = %v, want %v", fake.Now(), start)
	}
	fake.Advance(90 * time.Second)
	if got, want := fake.Now(), start.Add(90*time.Second); !got.Equal(want) {
		t.Errorf("Now after Advance = %v, want %v", got, want)
	}
}

func TestFakeAfterFiresInDeadlineOrder(t *testing.T) {
	fake := Fake(time.Unix(0, 0))
	late := fake.After(2 * time.Second)
	early := fake.After(1 * time.Second)

	fake.Advance(3 * time.Second)

	select {
	case <-early:
	default:
		t.Fatal("early timer did not fire")
	}
	select {
	case <-late:
	default:
		t.Fatal("late timer did not fire")
	}
}

func TestFakeAfterNotDueStaysPending(t *testing.T) {
	fake := Fake(time.Unix(0, 0))
	timer := fake.After(10 * time.Second)
	fake.Advance(5 * time.Second)
	select {
	case <-timer:
		t.Fatal("timer fired before its deadline")
	default:
	}
	if fake.PendingWaiters() != 1 {
		t.Errorf("PendingWaiters = %d, want 1", fake.PendingWaiters())
	}
}

func TestFakeAfterNonPositiveFiresImmediately(t *testing.T) {
	fake := Fake(time.Unix(0, 0))
	select {
	case <-fake.After(0):
	default:
		t.Fatal("After(0) did not fire immediately")
	}
}

func TestFakeSleepUnblocksOnAdvance(t *testing.T) {
	fake := Fake(time.Unix(0, 0))
	done := make(chan struct{})
	go func() {
		fake.Sleep(time.Second)
		close(done)
	}()
	for fake.PendingWaiters() == 0 {
		time.Sleep(time.Millisecond)
	}
	fake.Advance(time.Second)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Sleep did not return after Advance")
	}
}
