// Package clocktest provides a clock whose timers only fire when a test says so.
package clocktest

import (
	"sync"
	"time"

	"github.com/uber/elabd/src/elabd/internal/clock"
)

// Manual is a clock.Clock driven by the test. Sleep returns immediately.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	timers []*timer
}

type timer struct {
	clock   *Manual
	after   time.Duration
	f       func()
	stopped bool
	fired   bool
}

// NewManual returns a clock starting at now.
func NewManual(now time.Time) *Manual {
	return &Manual{now: now}
}

// Now returns the time set by Advance.
func (c *Manual) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep advances the clock by d.
func (c *Manual) Sleep(d time.Duration) {
	c.Advance(d)
}

// AfterFunc records f. It runs when Fire is called.
func (c *Manual) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &timer{clock: c, after: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward without firing timers.
func (c *Manual) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Pending returns the delays of timers that have neither fired nor been stopped.
func (c *Manual) Pending() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var pending []time.Duration
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			pending = append(pending, t.after)
		}
	}
	return pending
}

// Fire runs every pending timer on the calling goroutine and reports how many ran.
func (c *Manual) Fire() int {
	c.mu.Lock()
	var due []*timer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	c.timers = nil
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
	return len(due)
}

func (t *timer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
