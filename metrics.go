package parley

import "time"

// Metrics receives operational counters from the streaming core.
type Metrics interface {
	SessionStarted(mode SessionMode)
	SessionEnded(mode SessionMode, reason EndReason)
	DeltasFlushed(fragments int)
	Reconciled(corrected bool)
	DecodeFailed(source string)
	ReconnectScheduled(attempt int, delay time.Duration)
	ConnectionStateChanged(state ConnectionState)
	AudioChunkDropped()
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) SessionStarted(SessionMode)             {}
func (NopMetrics) SessionEnded(SessionMode, EndReason)    {}
func (NopMetrics) DeltasFlushed(int)                      {}
func (NopMetrics) Reconciled(bool)                        {}
func (NopMetrics) DecodeFailed(string)                    {}
func (NopMetrics) ReconnectScheduled(int, time.Duration)  {}
func (NopMetrics) ConnectionStateChanged(ConnectionState) {}
func (NopMetrics) AudioChunkDropped()                     {}

var _ Metrics = NopMetrics{}
