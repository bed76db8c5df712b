package parley

import "context"

// Requester opens a request-mode response stream for one piece of user text.
// Cancellation flows through ctx.
type Requester interface {
	Stream(ctx context.Context, text string) (EventStream, error)
}

// EventStream uses a pull-based iterator pattern. Next returns decoded
// events in arrival order and io.EOF once the underlying transport has
// ended. Malformed records are skipped by the implementation, never
// surfaced as errors. Any other error is a transport failure.
type EventStream interface {
	Next() (Event, error)
	Close() error
}

// Dialer opens the persistent bidirectional transport.
type Dialer interface {
	Dial(ctx context.Context) (Socket, error)
}

// Socket is one open persistent transport. Receive blocks until the next
// decoded event arrives, the transport fails, or ctx is done; unknown and
// malformed frames are skipped. Send writes one outbound binary payload.
// Send and Receive may be called from different goroutines.
type Socket interface {
	Receive(ctx context.Context) (Event, error)
	Send(payload []byte) error
	Close() error
}
