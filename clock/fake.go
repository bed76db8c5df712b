package clock

import (
	"sort"
	"sync"
	"time"

	"github.com/fwojciec/parley"
)

// Fake returns a FakeClock initialized to the given time. Time stands still
// until Advance is called.
func Fake(initial time.Time) *FakeClock {
	c := &FakeClock{now: initial}
	c.changed = sync.NewCond(&c.mu)
	return c
}

// FakeClock is a deterministic Clock for tests. AfterFunc callbacks run
// synchronously inside Advance, in deadline order. Ticks are delivered
// without blocking; a tick that finds the channel full is dropped, as with
// time.Ticker.
//
// FakeClock is safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*waiter
	changed *sync.Cond
}

type waiter struct {
	deadline time.Time
	callback func()         // AfterFunc
	ch       chan time.Time // ticker
	interval time.Duration  // ticker
	stopped  bool
	fired    bool
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc registers f to run when the clock is advanced past d. A
// non-positive d runs f before AfterFunc returns.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) parley.Timer {
	if d <= 0 {
		f()
		return fakeTimer{stop: func() bool { return false }}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	w := &waiter{deadline: c.now.Add(d), callback: f}
	c.waiters = append(c.waiters, w)
	c.changed.Broadcast()
	return fakeTimer{stop: func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		if w.stopped || w.fired {
			return false
		}
		w.stopped = true
		return true
	}}
}

// NewTicker returns a ticker firing every d of fake time. It panics if d is
// not positive.
func (c *FakeClock) NewTicker(d time.Duration) parley.Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	w := &waiter{deadline: c.now.Add(d), ch: make(chan time.Time, 1), interval: d}
	c.waiters = append(c.waiters, w)
	c.changed.Broadcast()
	return &fakeTicker{clock: c, w: w}
}

// Advance moves the clock forward by d and fires every waiter whose deadline
// falls within the new time. Tickers spanning several intervals fire once
// per interval.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	target := c.now
	c.mu.Unlock()

	for {
		due := c.collect(target)
		if len(due) == 0 {
			return
		}
		for _, w := range due {
			if w.callback != nil {
				w.callback()
				continue
			}
			select {
			case w.ch <- w.deadline:
			default:
			}
		}
	}
}

// collect removes due waiters from the pending list, reschedules tickers and
// returns the waiters to fire, sorted by deadline.
func (c *FakeClock) collect(target time.Time) []*waiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	var due, remaining []*waiter
	for _, w := range c.waiters {
		switch {
		case w.stopped:
		case !w.deadline.After(target):
			due = append(due, w)
		default:
			remaining = append(remaining, w)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})
	fire := make([]*waiter, 0, len(due))
	for _, w := range due {
		snapshot := *w
		fire = append(fire, &snapshot)
		if w.interval > 0 {
			w.deadline = w.deadline.Add(w.interval)
			remaining = append(remaining, w)
		} else {
			w.fired = true
		}
	}
	c.waiters = remaining
	return fire
}

// WaitForTimers blocks until at least n timers or tickers are pending. It
// closes the race between a goroutine registering a timer and the test
// advancing the clock.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.pendingLocked() < n {
		c.changed.Wait()
	}
}

// PendingCount returns the number of pending timers and tickers.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingLocked()
}

// NextDeadline returns how far in the future the earliest pending
// AfterFunc call is due, and false when none is pending.
func (c *FakeClock) NextDeadline() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var next time.Time
	found := false
	for _, w := range c.waiters {
		if w.stopped || w.callback == nil {
			continue
		}
		if !found || w.deadline.Before(next) {
			next, found = w.deadline, true
		}
	}
	if !found {
		return 0, false
	}
	return next.Sub(c.now), true
}

func (c *FakeClock) pendingLocked() int {
	n := 0
	for _, w := range c.waiters {
		if !w.stopped {
			n++
		}
	}
	return n
}

type fakeTimer struct {
	stop func() bool
}

func (t fakeTimer) Stop() bool { return t.stop() }

type fakeTicker struct {
	clock *FakeClock
	w     *waiter
}

func (t *fakeTicker) C() <-chan time.Time { return t.w.ch }

func (t *fakeTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.w.stopped = true
}
