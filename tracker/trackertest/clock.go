package trackertest

import (
	"sync"
	"time"

	"github.com/VTGare/kekboard/tracker"
)

// Clock is a manually advanced tracker.Clock.
type Clock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []waiter

	// Waits receives the duration of every After call.
	Waits chan time.Duration
}

type waiter struct {
	at time.Time
	ch chan time.Time
}

var _ tracker.Clock = (*Clock)(nil)

func NewClock(now time.Time) *Clock {
	return &Clock{now: now, Waits: make(chan time.Duration, 64)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *Clock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	ch := make(chan time.Time, 1)
	c.waiters = append(c.waiters, waiter{at: c.now.Add(d), ch: ch})
	c.mu.Unlock()

	select {
	case c.Waits <- d:
	default:
	}

	return ch
}

// Advance moves the clock forward and fires every waiter that became due.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)

	pending := c.waiters[:0]
	for _, w := range c.waiters {
		if w.at.After(c.now) {
			pending = append(pending, w)
			continue
		}

		w.ch <- c.now
	}

	c.waiters = pending
}
