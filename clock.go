package parley

import "time"

// Clock abstracts time so timer-driven behavior can be tested
// deterministically.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f once d has elapsed. f must not block.
	AfterFunc(d time.Duration, f func()) Timer
	NewTicker(d time.Duration) Ticker
}

// Timer is a pending AfterFunc call.
type Timer interface {
	// Stop prevents the call from firing. It reports whether the call was
	// still pending.
	Stop() bool
}

// Ticker delivers ticks at a fixed interval.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}
