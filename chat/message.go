package chat

import (
	"context"

	"github.com/fwojciec/parley"
)

// msg is a sealed interface for everything the controller loop consumes.
type msg interface {
	msg()
}

// Commands from the public API.

type startRequestMsg struct {
	ctx   context.Context
	text  string
	reply chan startReply
}

type startContinuousMsg struct {
	reply chan startReply
}

type startReply struct {
	id       string
	finished <-chan struct{}
	err      error
}

type stopMsg struct {
	sessionID string // empty stops whatever is active
	reason    parley.EndReason
	reply     chan error // may be nil
}

type interruptMsg struct {
	reply chan error
}

type snapshotMsg struct {
	reply chan snapshotReply
}

type snapshotReply struct {
	session parley.Session
	ok      bool
}

// Results from request-mode streaming goroutines.

type streamEventMsg struct {
	sessionID string
	event     parley.Event
}

// streamEndedMsg reports the end of a request-mode stream without a terminal
// event. A nil err means the stream ended cleanly.
type streamEndedMsg struct {
	sessionID string
	err       error
}

type audioChunkMsg struct {
	sessionID string
	chunk     []byte
}

// Results from connection goroutines and timers. Each carries the
// connection and generation it was issued for.

type connMsg interface {
	msg
	connection() *Connection
}

type dialedMsg struct {
	conn   *Connection
	gen    uint64
	socket parley.Socket
	err    error
}

type frameMsg struct {
	conn  *Connection
	gen   uint64
	event parley.Event
}

type droppedMsg struct {
	conn *Connection
	gen  uint64
	err  error
}

type reconnectDueMsg struct {
	conn *Connection
	gen  uint64
}

func (startRequestMsg) msg()    {}
func (startContinuousMsg) msg() {}
func (stopMsg) msg()            {}
func (interruptMsg) msg()       {}
func (snapshotMsg) msg()        {}
func (streamEventMsg) msg()     {}
func (streamEndedMsg) msg()     {}
func (audioChunkMsg) msg()      {}
func (dialedMsg) msg()          {}
func (frameMsg) msg()           {}
func (droppedMsg) msg()         {}
func (reconnectDueMsg) msg()    {}

func (m dialedMsg) connection() *Connection       { return m.conn }
func (m frameMsg) connection() *Connection        { return m.conn }
func (m droppedMsg) connection() *Connection      { return m.conn }
func (m reconnectDueMsg) connection() *Connection { return m.conn }

// post delivers m unless ctx ends first. It reports whether m was delivered.
func post(ctx context.Context, inbox chan<- msg, m msg) bool {
	select {
	case inbox <- m:
		return true
	case <-ctx.Done():
		return false
	}
}
