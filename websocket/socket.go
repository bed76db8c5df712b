package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/parley"
	parleyjson "github.com/fwojciec/parley/json"
	"github.com/gorilla/websocket"
)

// Interface compliance check.
var _ parley.Socket = (*Socket)(nil)

// Socket is one open voice socket.
type Socket struct {
	conn       *websocket.Conn
	writeMu    sync.Mutex // serializes data frames (gorilla/websocket requirement)
	writeWait  time.Duration
	closeGrace time.Duration
	logger     *slog.Logger
	metrics    parley.Metrics

	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

func newSocket(conn *websocket.Conn, d *Dialer) *Socket {
	return &Socket{
		conn:       conn,
		writeWait:  d.writeWait,
		closeGrace: d.closeGrace,
		logger:     d.logger,
		metrics:    d.metrics,
		done:       make(chan struct{}),
	}
}

// Send writes payload as one binary frame.
func (s *Socket) Send(payload []byte) error {
	select {
	case <-s.done:
		return fmt.Errorf("websocket: %w", parley.ErrNotConnected)
	default:
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeWait)); err != nil {
		return fmt.Errorf("websocket: set write deadline: %w", err)
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		return fmt.Errorf("websocket: write: %w", err)
	}
	return nil
}

// Receive returns the next decoded event. Cancelling ctx unblocks a pending
// read; the socket is unusable afterwards.
func (s *Socket) Receive(ctx context.Context) (parley.Event, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("websocket: read: %w", err)
		}
		if msgType != websocket.TextMessage {
			s.logger.Debug("websocket: ignoring non-text frame", "type", msgType, "bytes", len(data))
			continue
		}

		evt, err := parleyjson.DecodeFrame(data)
		switch {
		case errors.Is(err, parleyjson.ErrUnknownPayload):
			s.logger.Debug("websocket: ignoring frame", "error", err)
			continue
		case err != nil:
			s.logger.Warn("websocket: skipping malformed frame", "error", err, "data", string(data))
			s.metrics.DecodeFailed(metricsSource)
			continue
		}
		return evt, nil
	}
}

// Close sends a normal-closure frame and closes the connection. It is safe
// to call more than once.
func (s *Socket) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.closeGrace))
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

// heartbeat pings the server until the socket closes or a ping fails.
func (s *Socket) heartbeat(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-t.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.writeWait)); err != nil {
				s.logger.Warn("websocket: ping failed", "error", err)
				return
			}
		}
	}
}
