// Package mock provides test doubles for parley interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/parley"
)

// Interface compliance checks.
var (
	_ parley.Requester   = (*Requester)(nil)
	_ parley.EventStream = (*EventStream)(nil)
)

// Requester is a test double for parley.Requester.
// Set StreamFn before calling Stream.
type Requester struct {
	StreamFn func(ctx context.Context, text string) (parley.EventStream, error)
}

// Stream delegates to StreamFn.
func (r *Requester) Stream(ctx context.Context, text string) (parley.EventStream, error) {
	return r.StreamFn(ctx, text)
}

// EventStream is a test double for parley.EventStream.
// NextFn panics when nil to catch missing setup. CloseFn is nil-safe because
// callers commonly defer Close.
type EventStream struct {
	NextFn  func() (parley.Event, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *EventStream) Next() (parley.Event, error) {
	return s.NextFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *EventStream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}
