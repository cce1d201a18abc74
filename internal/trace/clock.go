// Package trace records what a simulation run did: every lifecycle
// event, stamped with a monotonic sequence number, persisted to
// SQLite or collected in memory for assertions and golden snapshots.
package trace

import "sync/atomic"

// Clock is a monotonic logical clock. Every recorded event carries a
// seq from Next(); wall-clock time is never used for ordering, so a
// re-run of the same scenario produces an identical trace.
type Clock struct {
	seq atomic.Int64
}

// NewClock returns a clock whose first Next() is 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number. Safe for concurrent use,
// though the driver loop is single-threaded.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
