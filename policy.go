package parley

import "time"

// FlushPolicy controls when queued deltas are pushed to the render target.
type FlushPolicy struct {
	// MaxFragments flushes immediately once this many fragments are queued.
	MaxFragments int
	// Interval is the period of the time-based flush.
	Interval time.Duration
}

// DefaultFlushPolicy returns the standard policy: five fragments or 100ms,
// whichever comes first.
func DefaultFlushPolicy() FlushPolicy {
	return FlushPolicy{
		MaxFragments: 5,
		Interval:     100 * time.Millisecond,
	}
}

// Backoff controls reconnection of the persistent transport.
type Backoff struct {
	Base        time.Duration
	Max         time.Duration
	MaxAttempts int
}

// DefaultBackoff returns the standard policy: 1s doubling up to 10s, five
// consecutive attempts.
func DefaultBackoff() Backoff {
	return Backoff{
		Base:        time.Second,
		Max:         10 * time.Second,
		MaxAttempts: 5,
	}
}

// Delay returns min(Base * 2^attempt, Max).
func (b Backoff) Delay(attempt int) time.Duration {
	d := b.Base
	for i := 0; i < attempt && d < b.Max; i++ {
		d *= 2
	}
	return min(d, b.Max)
}

// Reconcile returns the text a finalized response should display. The
// authoritative text wins whenever ok reports that the server supplied one,
// even when it is empty. Applying it to its own result changes nothing.
func Reconcile(local, authoritative string, ok bool) string {
	if !ok {
		return local
	}
	return authoritative
}
