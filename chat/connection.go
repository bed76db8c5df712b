package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/parley"
)

// sendQueueSize bounds the outbound chunks waiting for the socket writer.
const sendQueueSize = 8

// Connection manages the voice socket of one continuous session: dialing,
// reading frames, writing outbound chunks, and reconnecting with capped
// exponential backoff.
//
// All methods must be called from the controller loop. Dial results, frames,
// drops, and reconnect timers arrive as messages on the inbox and are fed
// back through handle. Each message carries the generation it was issued
// for, so results from superseded attempts are discarded. Socket writes and
// closes happen on other goroutines and never block the loop.
type Connection struct {
	ctx     context.Context // lifetime of the owning session
	inbox   chan<- msg
	dialer  parley.Dialer
	clock   parley.Clock
	backoff parley.Backoff
	logger  *slog.Logger
	metrics parley.Metrics
	onState func(parley.ConnectionState)

	state    parley.ConnectionState
	attempts int
	gen      uint64
	socket   parley.Socket
	out      chan []byte // queue drained by the writer of socket
	timer    parley.Timer
	cancel   context.CancelFunc // ends the current dial or reader goroutine
}

type connectionConfig struct {
	clock   parley.Clock
	backoff parley.Backoff
	logger  *slog.Logger
	metrics parley.Metrics
	onState func(parley.ConnectionState)
}

func newConnection(ctx context.Context, inbox chan<- msg, dialer parley.Dialer, cfg connectionConfig) *Connection {
	return &Connection{
		ctx:     ctx,
		inbox:   inbox,
		dialer:  dialer,
		clock:   cfg.clock,
		backoff: cfg.backoff,
		logger:  cfg.logger,
		metrics: cfg.metrics,
		onState: cfg.onState,
		state:   parley.ConnDisconnected,
	}
}

// State returns the current connection state.
func (c *Connection) State() parley.ConnectionState {
	return c.state
}

// Attempts returns the number of consecutive failed attempts since the last
// successful connect.
func (c *Connection) Attempts() int {
	return c.attempts
}

// Connect starts a dial attempt.
func (c *Connection) Connect() {
	c.stopTimer()
	c.stopAttempt()
	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	c.setState(parley.ConnConnecting)

	go func() {
		sock, err := c.dialer.Dial(ctx)
		if !post(ctx, c.inbox, dialedMsg{conn: c, gen: gen, socket: sock, err: err}) && sock != nil {
			_ = sock.Close()
		}
	}()
}

// Send queues payload for the socket writer when connected and drops it
// otherwise, or when the writer has fallen sendQueueSize chunks behind. It
// reports whether the payload was queued. A failed write surfaces later as
// a dropped connection.
func (c *Connection) Send(payload []byte) bool {
	if c.state != parley.ConnConnected || c.out == nil {
		c.metrics.AudioChunkDropped()
		return false
	}
	select {
	case c.out <- payload:
		return true
	default:
		c.logger.Debug("connection: send queue full")
		c.metrics.AudioChunkDropped()
		return false
	}
}

// Close shuts the connection down for good: the pending reconnect timer is
// cancelled, the socket is closed, and in-flight results become stale.
func (c *Connection) Close() {
	c.gen++
	c.stopTimer()
	c.stopAttempt()
	if c.socket != nil {
		c.setState(parley.ConnClosing)
		c.releaseSocket()
	}
	c.setState(parley.ConnDisconnected)
}

// handle applies a message addressed to this connection. It returns the
// decoded event for a current frame, and an error wrapping
// [parley.ErrRetriesExhausted] once reconnecting has given up.
func (c *Connection) handle(m connMsg) (parley.Event, error) {
	switch m := m.(type) {
	case dialedMsg:
		return nil, c.handleDialed(m)
	case frameMsg:
		if m.gen != c.gen || c.state != parley.ConnConnected {
			return nil, nil
		}
		return m.event, nil
	case droppedMsg:
		return nil, c.handleDropped(m)
	case reconnectDueMsg:
		if m.gen != c.gen || c.state != parley.ConnReconnecting {
			return nil, nil
		}
		c.timer = nil
		c.Connect()
	}
	return nil, nil
}

func (c *Connection) handleDialed(m dialedMsg) error {
	if m.gen != c.gen || c.state != parley.ConnConnecting {
		if m.socket != nil {
			_ = m.socket.Close()
		}
		return nil
	}
	if m.err != nil {
		c.logger.Warn("connection: dial failed", "attempt", c.attempts+1, "error", m.err)
		c.stopAttempt()
		return c.fail()
	}

	c.socket = m.socket
	c.out = make(chan []byte, sendQueueSize)
	c.attempts = 0
	c.setState(parley.ConnConnected)

	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	go c.read(ctx, m.gen, m.socket)
	go c.write(ctx, m.gen, m.socket, c.out)
	return nil
}

func (c *Connection) handleDropped(m droppedMsg) error {
	if m.gen != c.gen || c.state != parley.ConnConnected {
		return nil
	}
	c.logger.Warn("connection: dropped", "error", m.err)
	c.stopAttempt()
	c.releaseSocket()
	return c.fail()
}

// fail schedules the next reconnect, or gives up once the attempt budget
// is spent.
func (c *Connection) fail() error {
	c.setState(parley.ConnErroring)
	if c.attempts >= c.backoff.MaxAttempts {
		attempts := c.attempts
		c.setState(parley.ConnDisconnected)
		return fmt.Errorf("connection: %w after %d attempts", parley.ErrRetriesExhausted, attempts)
	}

	delay := c.backoff.Delay(c.attempts)
	c.attempts++
	c.metrics.ReconnectScheduled(c.attempts, delay)
	c.logger.Info("connection: reconnecting", "attempt", c.attempts, "delay", delay)
	c.setState(parley.ConnReconnecting)

	gen := c.gen
	ctx, inbox := c.ctx, c.inbox
	c.timer = c.clock.AfterFunc(delay, func() {
		post(ctx, inbox, reconnectDueMsg{conn: c, gen: gen})
	})
	return nil
}

func (c *Connection) read(ctx context.Context, gen uint64, sock parley.Socket) {
	for {
		evt, err := sock.Receive(ctx)
		if err != nil {
			post(ctx, c.inbox, droppedMsg{conn: c, gen: gen, err: err})
			return
		}
		if !post(ctx, c.inbox, frameMsg{conn: c, gen: gen, event: evt}) {
			return
		}
	}
}

func (c *Connection) write(ctx context.Context, gen uint64, sock parley.Socket, out <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case p := <-out:
			if err := sock.Send(p); err != nil {
				post(ctx, c.inbox, droppedMsg{conn: c, gen: gen, err: fmt.Errorf("send: %w", err)})
				return
			}
		}
	}
}

// releaseSocket detaches the current socket and closes it in the
// background. A close waits for an in-flight write, so it must not hold
// up the loop.
func (c *Connection) releaseSocket() {
	sock, logger := c.socket, c.logger
	c.socket, c.out = nil, nil
	go func() {
		if err := sock.Close(); err != nil {
			logger.Debug("connection: close socket", "error", err)
		}
	}()
}

func (c *Connection) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Connection) stopAttempt() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Connection) setState(s parley.ConnectionState) {
	if s == c.state {
		return
	}
	c.state = s
	c.metrics.ConnectionStateChanged(s)
	c.logger.Debug("connection: state", "state", s, "attempts", c.attempts)
	if c.onState != nil {
		c.onState(s)
	}
}
