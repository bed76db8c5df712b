package mock

import (
	"time"

	"github.com/fwojciec/parley"
)

// Interface compliance check.
var _ parley.Metrics = (*Metrics)(nil)

// Metrics is a test double for parley.Metrics. Every function field is
// nil-safe so tests only set the counters they assert on.
type Metrics struct {
	SessionStartedFn         func(mode parley.SessionMode)
	SessionEndedFn           func(mode parley.SessionMode, reason parley.EndReason)
	DeltasFlushedFn          func(fragments int)
	ReconciledFn             func(corrected bool)
	DecodeFailedFn           func(source string)
	ReconnectScheduledFn     func(attempt int, delay time.Duration)
	ConnectionStateChangedFn func(state parley.ConnectionState)
	AudioChunkDroppedFn      func()
}

func (m *Metrics) SessionStarted(mode parley.SessionMode) {
	if m.SessionStartedFn != nil {
		m.SessionStartedFn(mode)
	}
}

func (m *Metrics) SessionEnded(mode parley.SessionMode, reason parley.EndReason) {
	if m.SessionEndedFn != nil {
		m.SessionEndedFn(mode, reason)
	}
}

func (m *Metrics) DeltasFlushed(fragments int) {
	if m.DeltasFlushedFn != nil {
		m.DeltasFlushedFn(fragments)
	}
}

func (m *Metrics) Reconciled(corrected bool) {
	if m.ReconciledFn != nil {
		m.ReconciledFn(corrected)
	}
}

func (m *Metrics) DecodeFailed(source string) {
	if m.DecodeFailedFn != nil {
		m.DecodeFailedFn(source)
	}
}

func (m *Metrics) ReconnectScheduled(attempt int, delay time.Duration) {
	if m.ReconnectScheduledFn != nil {
		m.ReconnectScheduledFn(attempt, delay)
	}
}

func (m *Metrics) ConnectionStateChanged(state parley.ConnectionState) {
	if m.ConnectionStateChangedFn != nil {
		m.ConnectionStateChangedFn(state)
	}
}

func (m *Metrics) AudioChunkDropped() {
	if m.AudioChunkDroppedFn != nil {
		m.AudioChunkDroppedFn()
	}
}
