// Package clock implements [parley.Clock] on top of package time, plus a
// deterministic fake for tests.
package clock

import (
	"time"

	"github.com/fwojciec/parley"
)

// Interface compliance checks.
var (
	_ parley.Clock = Real()
	_ parley.Clock = (*FakeClock)(nil)
)

// Real returns a Clock backed by the time package.
func Real() parley.Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) parley.Timer {
	return time.AfterFunc(d, f)
}

func (realClock) NewTicker(d time.Duration) parley.Ticker {
	return realTicker{time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }
