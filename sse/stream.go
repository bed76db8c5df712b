package sse

import (
	"context"
	"fmt"
	"io"

	"github.com/fwojciec/parley"
)

// Interface compliance check.
var _ parley.EventStream = (*stream)(nil)

// stream implements [parley.EventStream] by reading the response body in
// chunks and decoding them incrementally.
type stream struct {
	ctx     context.Context
	body    io.ReadCloser
	decoder *Decoder
	buf     []byte
	queue   []parley.Event
	eof     bool
	closed  bool
	err     error // terminal transport error, if any
}

func newStream(ctx context.Context, body io.ReadCloser, d *Decoder) *stream {
	return &stream{
		ctx:     ctx,
		body:    body,
		decoder: d,
		buf:     make([]byte, readBufferSize),
	}
}

// Next returns the next decoded event. It returns io.EOF once the body is
// exhausted and every buffered event has been delivered.
func (s *stream) Next() (parley.Event, error) {
	for {
		if s.closed {
			return nil, fmt.Errorf("sse: %w", parley.ErrStreamClosed)
		}
		if len(s.queue) > 0 {
			evt := s.queue[0]
			s.queue = s.queue[1:]
			return evt, nil
		}
		if s.err != nil {
			return nil, s.err
		}
		if s.eof {
			return nil, io.EOF
		}

		n, err := s.body.Read(s.buf)
		if n > 0 {
			s.queue = append(s.queue, s.decoder.Decode(s.buf[:n])...)
		}
		switch {
		case err == io.EOF:
			s.eof = true
			s.queue = append(s.queue, s.decoder.Close()...)
		case err != nil:
			if ctxErr := s.ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			s.err = fmt.Errorf("sse: %w", err)
		}
	}
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
