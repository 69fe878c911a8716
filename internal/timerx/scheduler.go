// Package timerx abstracts deferred callbacks (success overlays, countdowns,
// delayed redirects) so flows can be driven by a fake clock in tests.
package timerx

import (
	"sort"
	"sync"
	"time"
)

// Scheduler runs f once after d. Scheduled callbacks are never cancelled;
// every effect they trigger must be idempotent.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// Real schedules on the runtime timer heap.
type Real struct{}

func (Real) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Fake is a manual clock. Advance fires due callbacks in deadline order on
// the calling goroutine.
type Fake struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []pending
}

type pending struct {
	at  time.Duration
	seq int
	f   func()
}

func NewFake() *Fake {
	return &Fake{}
}

func (c *Fake) AfterFunc(d time.Duration, f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.pending = append(c.pending, pending{at: c.now + d, seq: c.seq, f: f})
}

// Advance moves the clock forward by d. Callbacks scheduled by fired
// callbacks run too when they fall inside the window.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		sort.Slice(c.pending, func(i, j int) bool {
			if c.pending[i].at == c.pending[j].at {
				return c.pending[i].seq < c.pending[j].seq
			}
			return c.pending[i].at < c.pending[j].at
		})
		if len(c.pending) == 0 || c.pending[0].at > target {
			c.now = target
			c.mu.Unlock()
			return
		}
		next := c.pending[0]
		c.pending = c.pending[1:]
		c.now = next.at
		c.mu.Unlock()

		next.f()
	}
}

// Pending reports how many callbacks have not fired yet.
func (c *Fake) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
