package mock

import (
	"context"

	"github.com/fwojciec/parley"
)

// Interface compliance checks.
var (
	_ parley.Dialer = (*Dialer)(nil)
	_ parley.Socket = (*Socket)(nil)
)

// Dialer is a test double for parley.Dialer.
// Set DialFn before calling Dial.
type Dialer struct {
	DialFn func(ctx context.Context) (parley.Socket, error)
}

// Dial delegates to DialFn.
func (d *Dialer) Dial(ctx context.Context) (parley.Socket, error) {
	return d.DialFn(ctx)
}

// Socket is a test double for parley.Socket.
// ReceiveFn panics when nil. SendFn and CloseFn are nil-safe no-ops.
type Socket struct {
	ReceiveFn func(ctx context.Context) (parley.Event, error)
	SendFn    func(payload []byte) error
	CloseFn   func() error
}

// Receive delegates to ReceiveFn.
func (s *Socket) Receive(ctx context.Context) (parley.Event, error) {
	return s.ReceiveFn(ctx)
}

// Send delegates to SendFn. Returns nil when SendFn is not set.
func (s *Socket) Send(payload []byte) error {
	if s.SendFn == nil {
		return nil
	}
	return s.SendFn(payload)
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Socket) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}
