package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fwojciec/parley"
	"github.com/fwojciec/parley/sse"
)

type streamState int

const (
	stateStreaming streamState = iota
	stateComplete
	stateError
	stateClosed
)

// stream implements [parley.EventStream] by framing SSE records from an HTTP
// response body.
type stream struct {
	ctx     context.Context
	body    io.ReadCloser
	logger  *slog.Logger
	framer  sse.Framer
	buf     []byte
	records []sse.Record
	eof     bool

	state      streamState
	blocks     map[int]string // content block index to block type
	text       strings.Builder
	stopReason string
	err        error // terminal error, if any
}

// Interface compliance check.
var _ parley.EventStream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser, logger *slog.Logger) *stream {
	return &stream{
		ctx:    ctx,
		body:   body,
		logger: logger,
		buf:    make([]byte, readBufferSize),
		blocks: make(map[int]string),
	}
}

// Next reads the next event from the SSE stream. After the terminal
// [parley.EventDone] or [parley.EventError] it returns io.EOF.
func (s *stream) Next() (parley.Event, error) {
	switch s.state {
	case stateComplete:
		return nil, io.EOF
	case stateError:
		return nil, s.err
	case stateClosed:
		return nil, fmt.Errorf("anthropic: %w", parley.ErrStreamClosed)
	}

	for {
		rec, err := s.readRecord()
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}

		evt, err := s.processEvent(rec)
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}
		if evt != nil {
			return evt, nil
		}
		// Non-semantic event (ping, message_start, etc.) - keep reading.
	}
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	if s.state == stateClosed {
		return nil
	}
	s.state = stateClosed
	return s.body.Close()
}

// terminate records a terminal error.
func (s *stream) terminate(err error) {
	s.state = stateError
	if errors.Is(err, io.EOF) {
		// message_stop completes the stream before the body runs out.
		s.err = errors.New("anthropic: unexpected end of stream")
		return
	}
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	s.err = fmt.Errorf("anthropic: %w", err)
}

// readRecord returns the next complete SSE record, reading more of the body
// as needed.
func (s *stream) readRecord() (sse.Record, error) {
	for {
		if len(s.records) > 0 {
			rec := s.records[0]
			s.records = s.records[1:]
			return rec, nil
		}
		if s.eof {
			return sse.Record{}, io.EOF
		}

		n, err := s.body.Read(s.buf)
		if n > 0 {
			s.records = append(s.records, s.framer.Write(s.buf[:n])...)
		}
		switch {
		case err == io.EOF:
			s.eof = true
			s.records = append(s.records, s.framer.Flush()...)
		case err != nil:
			return sse.Record{}, err
		}
	}
}

// processEvent maps an SSE record to a parley event. Returns nil for
// non-semantic events.
func (s *stream) processEvent(rec sse.Record) (parley.Event, error) {
	eventType := rec.Event
	if eventType == "" {
		var probe struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal([]byte(rec.Data), &probe); err != nil {
			return nil, fmt.Errorf("failed to parse event: %w", err)
		}
		eventType = probe.Type
	}

	switch eventType {
	case "message_start":
		return nil, s.handleMessageStart(rec.Data)
	case "content_block_start":
		return nil, s.handleContentBlockStart(rec.Data)
	case "content_block_delta":
		return s.handleContentBlockDelta(rec.Data)
	case "message_delta":
		return nil, s.handleMessageDelta(rec.Data)
	case "message_stop":
		s.state = stateComplete
		s.logger.Debug("anthropic: message complete", "stop_reason", s.stopReason)
		return parley.EventDone{FullText: s.text.String(), HasFullText: true}, nil
	case "error":
		return s.handleError(rec.Data)
	default:
		// ping, content_block_stop, and unknown event types carry nothing
		// to render.
		return nil, nil
	}
}

func (s *stream) handleMessageStart(data string) error {
	var evt sseMessageStart
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("failed to parse message_start: %w", err)
	}
	s.logger.Debug("anthropic: message started", "id", evt.Message.ID, "model", evt.Message.Model)
	return nil
}

func (s *stream) handleContentBlockStart(data string) error {
	var evt sseContentBlockStart
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("failed to parse content_block_start: %w", err)
	}
	s.blocks[evt.Index] = evt.ContentBlock.Type
	if evt.ContentBlock.Type == "text" && evt.ContentBlock.Text != "" {
		s.text.WriteString(evt.ContentBlock.Text)
	}
	return nil
}

func (s *stream) handleContentBlockDelta(data string) (parley.Event, error) {
	var evt sseContentBlockDelta
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return nil, fmt.Errorf("failed to parse content_block_delta: %w", err)
	}

	blockType, ok := s.blocks[evt.Index]
	if !ok {
		return nil, fmt.Errorf("delta for unknown block index %d", evt.Index)
	}
	if blockType != "text" || evt.Delta.Type != "text_delta" {
		// Thinking, signature, and tool input deltas are not rendered.
		return nil, nil
	}
	s.text.WriteString(evt.Delta.Text)
	return parley.EventDelta{Text: evt.Delta.Text}, nil
}

func (s *stream) handleMessageDelta(data string) error {
	var evt sseMessageDelta
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("failed to parse message_delta: %w", err)
	}
	if evt.Delta.StopReason != nil {
		s.stopReason = *evt.Delta.StopReason
	}
	return nil
}

func (s *stream) handleError(data string) (parley.Event, error) {
	var evt sseError
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return nil, fmt.Errorf("failed to parse error event: %w", err)
	}
	s.state = stateComplete
	msg := evt.Error.Message
	if evt.Error.Type != "" {
		msg = evt.Error.Type + ": " + msg
	}
	return parley.EventError{Message: msg}, nil
}
