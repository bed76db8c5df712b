package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/parley"
	"github.com/fwojciec/parley/clock"
	"github.com/google/uuid"
)

const inboxSize = 64

// Controller runs at most one chat session at a time. A request session
// streams one response over the Requester. A continuous session streams
// captured audio over a socket from the Dialer and renders responses as
// they arrive until stopped.
//
// All session state is owned by the goroutine running [Controller.Run].
// Public methods and background goroutines communicate with it through
// messages, and results tagged with a finished session are dropped.
type Controller struct {
	sink      parley.RenderSink
	requester parley.Requester
	dialer    parley.Dialer
	capture   parley.CaptureDevice
	clock     parley.Clock
	metrics   parley.Metrics
	logger    *slog.Logger
	flush     parley.FlushPolicy
	backoff   parley.Backoff
	newID     func() string

	inbox chan msg
	done  chan struct{}

	active *session
}

type session struct {
	parley.Session
	acc      *Accumulator
	ticker   parley.Ticker
	ctx      context.Context
	cancel   context.CancelFunc
	conn     *Connection
	captured bool
	// interrupted discards deltas until the current response completes.
	interrupted bool
	unwatch     func() bool
	finished    chan struct{}
}

// Option configures a [Controller].
type Option func(*Controller)

// WithRequester enables request mode.
func WithRequester(r parley.Requester) Option {
	return func(c *Controller) { c.requester = r }
}

// WithDialer sets the socket dialer used by continuous mode.
func WithDialer(d parley.Dialer) Option {
	return func(c *Controller) { c.dialer = d }
}

// WithCaptureDevice sets the audio source used by continuous mode.
func WithCaptureDevice(d parley.CaptureDevice) Option {
	return func(c *Controller) { c.capture = d }
}

// WithClock sets the clock driving flush ticks and reconnect timers.
func WithClock(clk parley.Clock) Option {
	return func(c *Controller) { c.clock = clk }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m parley.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithFlushPolicy overrides [parley.DefaultFlushPolicy].
func WithFlushPolicy(p parley.FlushPolicy) Option {
	return func(c *Controller) { c.flush = p }
}

// WithBackoff overrides [parley.DefaultBackoff].
func WithBackoff(b parley.Backoff) Option {
	return func(c *Controller) { c.backoff = b }
}

// New creates a Controller rendering into sink. Continuous mode requires
// both WithDialer and WithCaptureDevice; request mode requires
// WithRequester.
func New(sink parley.RenderSink, opts ...Option) *Controller {
	c := &Controller{
		sink:    sink,
		clock:   clock.Real(),
		metrics: parley.NopMetrics{},
		logger:  slog.Default(),
		flush:   parley.DefaultFlushPolicy(),
		backoff: parley.DefaultBackoff(),
		newID:   uuid.NewString,
		inbox:   make(chan msg, inboxSize),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run processes commands and session results until ctx is cancelled. An
// active session is ended when Run returns. Run must be called exactly
// once.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	c.reportStatus("")
	for {
		var tick <-chan time.Time
		if c.active != nil {
			tick = c.active.ticker.C()
		}
		select {
		case <-ctx.Done():
			c.end(parley.EndShutdown, "")
			return ctx.Err()
		case m := <-c.inbox:
			c.handle(ctx, m)
		case <-tick:
			c.active.acc.Flush()
		}
	}
}

// StartRequest sends text and blocks until the response completes, the
// session is stopped, or ctx is cancelled. Cancelling ctx stops the
// session. Transport and server failures are rendered into the sink rather
// than returned; the error result reports only why the session could not
// start or why waiting was abandoned.
func (c *Controller) StartRequest(ctx context.Context, text string) error {
	reply := make(chan startReply, 1)
	r, err := c.start(ctx, startRequestMsg{ctx: ctx, text: text, reply: reply}, reply)
	if err != nil {
		return err
	}
	select {
	case <-r.finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return parley.ErrControllerClosed
	}
}

// StartContinuous opens a continuous session and returns once it has
// started. It runs until [Controller.Stop] or a session-fatal failure.
func (c *Controller) StartContinuous(ctx context.Context) error {
	reply := make(chan startReply, 1)
	_, err := c.start(ctx, startContinuousMsg{reply: reply}, reply)
	return err
}

// Stop ends the active session. It returns [parley.ErrNoSession] when none
// is active. Once Stop returns, nothing from the stopped session reaches
// the sink.
func (c *Controller) Stop(ctx context.Context) error {
	reply := make(chan error, 1)
	if err := c.command(ctx, stopMsg{reason: parley.EndStopped, reply: reply}); err != nil {
		return err
	}
	return c.await(ctx, reply)
}

// Interrupt discards the rest of the response being streamed in a
// continuous session. Text already rendered stays, the session stays open,
// and the next response renders normally. It is a no-op when no response
// is in progress. It returns [parley.ErrNoSession] when idle and
// [parley.ErrUnsupportedMode] for a request session.
func (c *Controller) Interrupt(ctx context.Context) error {
	reply := make(chan error, 1)
	if err := c.command(ctx, interruptMsg{reply: reply}); err != nil {
		return err
	}
	return c.await(ctx, reply)
}

func (c *Controller) await(ctx context.Context, reply <-chan error) error {
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return parley.ErrControllerClosed
	}
}

// Session returns a snapshot of the active session, or
// [parley.ErrNoSession].
func (c *Controller) Session(ctx context.Context) (parley.Session, error) {
	reply := make(chan snapshotReply, 1)
	if err := c.command(ctx, snapshotMsg{reply: reply}); err != nil {
		return parley.Session{}, err
	}
	select {
	case r := <-reply:
		if !r.ok {
			return parley.Session{}, parley.ErrNoSession
		}
		return r.session, nil
	case <-ctx.Done():
		return parley.Session{}, ctx.Err()
	case <-c.done:
		return parley.Session{}, parley.ErrControllerClosed
	}
}

func (c *Controller) start(ctx context.Context, m msg, reply <-chan startReply) (startReply, error) {
	if err := c.command(ctx, m); err != nil {
		return startReply{}, err
	}
	select {
	case r := <-reply:
		return r, r.err
	case <-ctx.Done():
		return startReply{}, ctx.Err()
	case <-c.done:
		return startReply{}, parley.ErrControllerClosed
	}
}

func (c *Controller) command(ctx context.Context, m msg) error {
	select {
	case c.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return parley.ErrControllerClosed
	}
}

func (c *Controller) handle(ctx context.Context, m msg) {
	switch m := m.(type) {
	case startRequestMsg:
		c.startRequest(ctx, m)
	case startContinuousMsg:
		c.startContinuous(ctx, m)
	case stopMsg:
		c.stop(m)
	case interruptMsg:
		m.reply <- c.interrupt()
	case snapshotMsg:
		if s := c.active; s != nil {
			snap := s.Session
			snap.Text = s.acc.Text()
			m.reply <- snapshotReply{session: snap, ok: true}
		} else {
			m.reply <- snapshotReply{}
		}
	case streamEventMsg:
		if c.current(m.sessionID) {
			c.apply(m.event)
		}
	case streamEndedMsg:
		if c.current(m.sessionID) {
			c.streamEnded(m.err)
		}
	case audioChunkMsg:
		if c.current(m.sessionID) && c.active.conn != nil {
			c.active.conn.Send(m.chunk)
		}
	case connMsg:
		s := c.active
		if s == nil || s.conn != m.connection() {
			if d, ok := m.(dialedMsg); ok && d.socket != nil {
				_ = d.socket.Close()
			}
			return
		}
		evt, err := s.conn.handle(m)
		if err != nil {
			c.logger.Error("connection lost", "session", s.ID, "error", err)
			c.renderError("connection lost: reconnect attempts exhausted")
			c.end(parley.EndRetriesExhausted, err.Error())
			return
		}
		if evt != nil {
			c.apply(evt)
		}
	}
}

func (c *Controller) current(id string) bool {
	return c.active != nil && c.active.ID == id
}

func (c *Controller) startRequest(ctx context.Context, m startRequestMsg) {
	if c.active != nil {
		m.reply <- startReply{err: parley.ErrSessionActive}
		return
	}
	if c.requester == nil {
		m.reply <- startReply{err: fmt.Errorf("%w: request mode not configured", parley.ErrUnsupportedMode)}
		return
	}

	s := c.open(ctx, parley.ModeRequest)
	c.sink.CreateMessageTarget(parley.TargetUser).SetText(m.text)

	id := s.ID
	s.unwatch = context.AfterFunc(m.ctx, func() {
		post(ctx, c.inbox, stopMsg{sessionID: id, reason: parley.EndStopped})
	})
	go c.pump(s.ctx, id, m.text)
	m.reply <- startReply{id: id, finished: s.finished}
}

func (c *Controller) startContinuous(ctx context.Context, m startContinuousMsg) {
	if c.active != nil {
		m.reply <- startReply{err: parley.ErrSessionActive}
		return
	}
	if c.dialer == nil || c.capture == nil {
		m.reply <- startReply{err: fmt.Errorf("%w: continuous mode not configured", parley.ErrUnsupportedMode)}
		return
	}

	s := c.open(ctx, parley.ModeContinuous)
	stream, err := c.capture.Acquire(s.ctx)
	if err != nil {
		c.logger.Error("capture unavailable", "session", s.ID, "error", err)
		c.renderError(fmt.Sprintf("%v: %v", parley.ErrCaptureUnavailable, err))
		c.end(parley.EndCaptureUnavailable, err.Error())
		m.reply <- startReply{id: s.ID, finished: s.finished}
		return
	}
	s.captured = true

	s.conn = newConnection(s.ctx, c.inbox, c.dialer, connectionConfig{
		clock:   c.clock,
		backoff: c.backoff,
		logger:  c.logger,
		metrics: c.metrics,
		onState: func(parley.ConnectionState) { c.reportStatus("") },
	})
	s.conn.Connect()

	id, sctx := s.ID, s.ctx
	stream.OnChunk(func(chunk []byte) {
		post(sctx, c.inbox, audioChunkMsg{sessionID: id, chunk: chunk})
	})
	m.reply <- startReply{id: id, finished: s.finished}
}

func (c *Controller) open(ctx context.Context, mode parley.SessionMode) *session {
	sctx, cancel := context.WithCancel(ctx)
	s := &session{
		Session: parley.Session{
			ID:        c.newID(),
			Mode:      mode,
			State:     parley.SessionActive,
			CreatedAt: c.clock.Now(),
		},
		acc:      c.newAccumulator(),
		ticker:   c.clock.NewTicker(c.flush.Interval),
		ctx:      sctx,
		cancel:   cancel,
		finished: make(chan struct{}),
	}
	c.active = s
	c.metrics.SessionStarted(mode)
	c.logger.Info("session started", "session", s.ID, "mode", mode)
	c.reportStatus("")
	return s
}

func (c *Controller) stop(m stopMsg) {
	var err error
	if c.active == nil || (m.sessionID != "" && m.sessionID != c.active.ID) {
		err = parley.ErrNoSession
	} else {
		c.end(m.reason, "stopped")
	}
	if m.reply != nil {
		m.reply <- err
	}
}

// end tears the active session down. It is a no-op when idle.
func (c *Controller) end(reason parley.EndReason, note string) {
	s := c.active
	if s == nil {
		return
	}
	s.State = parley.SessionFinalizing
	if s.unwatch != nil {
		s.unwatch()
	}
	s.ticker.Stop()
	s.acc.Drain()
	s.cancel()
	if s.conn != nil {
		s.conn.Close()
	}
	if s.captured {
		if err := c.capture.Release(); err != nil {
			c.logger.Warn("release capture", "session", s.ID, "error", err)
		}
	}

	s.State = parley.SessionClosed
	c.active = nil
	c.metrics.SessionEnded(s.Mode, reason)
	c.logger.Info("session ended", "session", s.ID, "mode", s.Mode, "reason", reason)
	if note == "" {
		note = string(reason)
	}
	c.sink.SetStatus(parley.Status{
		Mode:       s.Mode,
		Session:    parley.SessionClosed,
		Connection: parley.ConnDisconnected,
		Message:    note,
	})
	close(s.finished)
}

func (c *Controller) pump(ctx context.Context, id, text string) {
	stream, err := c.requester.Stream(ctx, text)
	if err != nil {
		post(ctx, c.inbox, streamEndedMsg{sessionID: id, err: err})
		return
	}
	defer stream.Close()

	for {
		evt, err := stream.Next()
		if errors.Is(err, io.EOF) {
			post(ctx, c.inbox, streamEndedMsg{sessionID: id})
			return
		}
		if err != nil {
			post(ctx, c.inbox, streamEndedMsg{sessionID: id, err: err})
			return
		}
		if !post(ctx, c.inbox, streamEventMsg{sessionID: id, event: evt}) {
			return
		}
		if parley.IsTerminal(evt) {
			return
		}
	}
}

func (c *Controller) apply(evt parley.Event) {
	s := c.active
	switch e := evt.(type) {
	case parley.EventDelta:
		s.acc.Add(e.Text)
	case parley.EventResponseDelta:
		if !s.interrupted {
			s.acc.Add(e.Text)
		}
	case parley.EventDone:
		c.complete(e.FullText, e.HasFullText)
	case parley.EventResponseComplete:
		if s.interrupted {
			c.logger.Debug("interrupted response complete", "session", s.ID)
			s.interrupted = false
			s.acc = c.newAccumulator()
			return
		}
		c.complete(e.FullText, e.HasFullText)
	case parley.EventError:
		c.logger.Warn("server error", "session", s.ID, "message", e.Message)
		s.acc.Drain()
		c.renderError(e.Message)
		if s.Mode == parley.ModeRequest {
			c.end(parley.EndError, e.Message)
		} else {
			s.interrupted = false
			s.acc = c.newAccumulator()
		}
	}
}

func (c *Controller) interrupt() error {
	s := c.active
	switch {
	case s == nil:
		return parley.ErrNoSession
	case s.Mode != parley.ModeContinuous:
		return fmt.Errorf("%w: interrupt needs a continuous session", parley.ErrUnsupportedMode)
	case s.interrupted || !s.acc.Started():
		return nil
	}
	s.acc.Drain()
	s.interrupted = true
	c.logger.Info("response interrupted", "session", s.ID)
	c.reportStatus("response interrupted")
	return nil
}

// complete finalizes the current response. A request session ends; a
// continuous session stays open and the next response gets its own target.
func (c *Controller) complete(fullText string, ok bool) {
	s := c.active
	if s.Mode == parley.ModeRequest {
		s.State = parley.SessionFinalizing
	}
	final := s.acc.Finalize(fullText, ok)
	c.logger.Debug("response complete", "session", s.ID, "chars", len(final))
	if s.Mode == parley.ModeRequest {
		c.end(parley.EndCompleted, "")
		return
	}
	s.acc = c.newAccumulator()
}

func (c *Controller) streamEnded(err error) {
	s := c.active
	if err == nil {
		c.logger.Warn("stream ended without a terminal event", "session", s.ID)
		c.complete("", false)
		return
	}
	c.logger.Error("request failed", "session", s.ID, "error", err)
	s.acc.Drain()
	c.renderError(err.Error())
	c.end(parley.EndError, err.Error())
}

func (c *Controller) renderError(text string) {
	c.sink.CreateMessageTarget(parley.TargetError).SetText(text)
}

func (c *Controller) reportStatus(note string) {
	st := parley.Status{Message: note}
	if s := c.active; s != nil {
		st.Mode = s.Mode
		st.Session = s.State
		if s.conn != nil {
			st.Connection = s.conn.State()
			st.Attempt = s.conn.Attempts()
		}
	}
	c.sink.SetStatus(st)
}

func (c *Controller) newAccumulator() *Accumulator {
	return NewAccumulator(c.sink, c.flush, c.metrics)
}
