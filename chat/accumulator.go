package chat

import (
	"strings"

	"github.com/fwojciec/parley"
)

// Accumulator paces one response's deltas into a render target. Fragments
// are queued and appended in batches: immediately once the queue holds
// FlushPolicy.MaxFragments, otherwise on the next Flush (the controller
// calls Flush every FlushPolicy.Interval).
//
// The target is created on first output and released by Finalize or Drain.
// An Accumulator is not safe for concurrent use.
type Accumulator struct {
	sink    parley.RenderSink
	policy  parley.FlushPolicy
	metrics parley.Metrics

	target parley.MessageTarget
	queue  []string
	text   strings.Builder
}

// NewAccumulator returns an Accumulator rendering into targets created on
// sink. A nil metrics discards counts.
func NewAccumulator(sink parley.RenderSink, policy parley.FlushPolicy, metrics parley.Metrics) *Accumulator {
	if metrics == nil {
		metrics = parley.NopMetrics{}
	}
	return &Accumulator{sink: sink, policy: policy, metrics: metrics}
}

// Add queues fragment and reports whether it triggered a flush. Empty
// fragments are ignored.
func (a *Accumulator) Add(fragment string) bool {
	if fragment == "" {
		return false
	}
	a.queue = append(a.queue, fragment)
	if len(a.queue) >= a.policy.MaxFragments {
		a.Flush()
		return true
	}
	return false
}

// Flush appends all queued fragments, in order, as one write.
func (a *Accumulator) Flush() {
	if len(a.queue) == 0 {
		return
	}
	n := len(a.queue)
	chunk := strings.Join(a.queue, "")
	clear(a.queue)
	a.queue = a.queue[:0]

	a.text.WriteString(chunk)
	a.ensureTarget().Append(chunk)
	a.metrics.DeltasFlushed(n)
}

// Finalize flushes, then replaces the rendered text with authoritative when
// ok is set and the texts differ, and releases the target. It returns the
// final text. Calling Finalize again with the same arguments is a no-op.
func (a *Accumulator) Finalize(authoritative string, ok bool) string {
	a.Flush()
	local := a.text.String()
	final := parley.Reconcile(local, authoritative, ok)
	corrected := final != local
	if corrected {
		a.ensureTarget().SetText(final)
		a.text.Reset()
		a.text.WriteString(final)
	}
	if ok {
		a.metrics.Reconciled(corrected)
	}
	a.target = nil
	return final
}

// Drain flushes and releases the target without reconciling.
func (a *Accumulator) Drain() {
	a.Flush()
	a.target = nil
}

// Text returns the text flushed so far.
func (a *Accumulator) Text() string {
	return a.text.String()
}

// Started reports whether the response has produced output that has not
// been finalized or drained.
func (a *Accumulator) Started() bool {
	return a.target != nil || len(a.queue) > 0
}

// Pending returns the number of queued, unflushed fragments.
func (a *Accumulator) Pending() int {
	return len(a.queue)
}

func (a *Accumulator) ensureTarget() parley.MessageTarget {
	if a.target == nil {
		a.target = a.sink.CreateMessageTarget(parley.TargetAssistant)
	}
	return a.target
}
