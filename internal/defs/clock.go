package defs

import "sync/atomic"

// Clock is the table's monotonic logical clock. Every mutation stamps
// the touched Definition's Changed field with the next tick, which is
// what staleness checks compare against.
//
// The table itself is single-threaded, but the clock uses an atomic
// counter so snapshot tooling can read it from outside the session
// without ceremony.
type Clock struct {
	now atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific tick. Used when
// restoring a session snapshot to resume from its last position.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.now.Store(start)
	return c
}

// Next advances the clock and returns the new tick. Each call returns a
// unique, strictly increasing value.
func (c *Clock) Next() int64 {
	return c.now.Add(1)
}

// Current returns the current tick without advancing.
func (c *Clock) Current() int64 {
	return c.now.Load()
}
