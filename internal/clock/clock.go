// Package clock supplies the authoritative UNIX-second timestamps every
// transition is evaluated against.
package clock

import (
	"sync"
	"time"
)

const (
	Minute int64 = 60
	Hour         = 60 * Minute
	Day          = 24 * Hour
)

type Clock interface {
	Now() int64
}

// System reads the wall clock but never goes backwards: a step back is
// reported as the last value handed out.
type System struct {
	mu   sync.Mutex
	last int64
}

func NewSystem() *System {
	return &System{}
}

func (c *System) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now().Unix()
	if now < c.last {
		return c.last
	}
	c.last = now
	return now
}

// Fixed is a manually driven clock for tests and replays.
type Fixed struct {
	mu  sync.Mutex
	now int64
}

func NewFixed(now int64) *Fixed {
	return &Fixed{now: now}
}

func (c *Fixed) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d seconds. Negative values are ignored.
func (c *Fixed) Advance(d int64) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.now += d
	c.mu.Unlock()
}

// Set jumps to t if t is not earlier than the current value.
func (c *Fixed) Set(t int64) {
	c.mu.Lock()
	if t > c.now {
		c.now = t
	}
	c.mu.Unlock()
}

// Format renders a ledger timestamp for humans.
func Format(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
