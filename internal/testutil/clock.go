// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"sync"
	"time"
)

type (
	// Clock is the timer seam the supervision code runs on. Production
	// code uses RealClock; tests drive a FakeClock by hand.
	Clock interface {
		Now() time.Time

		// After behaves like time.After. On a FakeClock the channel
		// fires when Advance or Set moves past the deadline.
		After(d time.Duration) <-chan time.Time

		Since(t time.Time) time.Duration
	}

	// RealClock delegates to the time package.
	RealClock struct{}

	// FakeClock only moves when Advance or Set is called.
	FakeClock struct {
		current time.Time
		mu      sync.Mutex
		waiters []waiter
	}

	// waiter is a pending After call.
	waiter struct {
		target time.Time
		ch     chan time.Time
	}
)

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (RealClock) Since(t time.Time) time.Duration { return time.Since(t) }

// NewFakeClock creates a FakeClock at the given time. A zero initial
// time maps to a fixed reference instant so tests stay reproducible.
func NewFakeClock(initial time.Time) *FakeClock {
	if initial.IsZero() {
		initial = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &FakeClock{current: initial}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After registers a waiter that fires once the fake time reaches the
// deadline. A non-positive duration fires immediately.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.current
		return ch
	}

	target := c.current.Add(d)
	c.waiters = append(c.waiters, waiter{target: target, ch: ch})
	return ch
}

// Since returns the fake time elapsed since t.
func (c *FakeClock) Since(t time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Sub(t)
}

// Advance moves the fake time forward by d, firing any waiters whose
// deadline is now in the past.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = c.current.Add(d)
	c.notifyWaiters()
}

// Set jumps the fake time to t, firing any waiters that deadline
// passed over.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
	c.notifyWaiters()
}

// notifyWaiters fires every waiter at or past its deadline. Callers
// must hold mu.
func (c *FakeClock) notifyWaiters() {
	remaining := c.waiters[:0]
	for _, w := range c.waiters {
		if !c.current.Before(w.target) {
			select {
			case w.ch <- c.current:
			default:
			}
		} else {
			remaining = append(remaining, w)
		}
	}
	c.waiters = remaining
}
