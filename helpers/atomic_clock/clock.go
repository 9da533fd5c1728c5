// Package atomic_clock is wall clock timestamp safe for concurrent set and read.
// Zero value means never set.
package atomic_clock

import (
	"sync/atomic"
	"time"
)

type Clock struct{ v int64 }

func source() int64 { return time.Now().UnixNano() }

func (c *Clock) get() int64    { return atomic.LoadInt64(&c.v) }
func (c *Clock) set(new int64) { atomic.StoreInt64(&c.v, new) }

func (c *Clock) IsZero() bool    { return c.get() == 0 }
func (c *Clock) SetNow()         { c.set(source()) }
func (c *Clock) UnixNano() int64 { return c.get() }

// Time returns zero time.Time when clock was never set.
func (c *Clock) Time() time.Time {
	v := c.get()
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(0, v)
}

func Since(begin *Clock) time.Duration { return time.Duration(source() - begin.get()) }
