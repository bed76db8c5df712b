package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/fwojciec/parley"
	"google.golang.org/genai"
)

type streamState int

const (
	stateStreaming streamState = iota
	stateComplete
	stateError
	stateClosed
)

// stream implements [parley.EventStream] by wrapping the genai SDK's
// streaming iterator.
type stream struct {
	ctx   context.Context
	pull  func() (*genai.GenerateContentResponse, error, bool)
	stop  func()
	queue []parley.Event
	text  strings.Builder
	state streamState
	err   error
}

// Interface compliance check.
var _ parley.EventStream = (*stream)(nil)

// NewStreamFromIter wraps a genai response iterator. Exported for testing.
func NewStreamFromIter(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) parley.EventStream {
	next, stop := iter.Pull2(seq)
	return &stream{ctx: ctx, pull: next, stop: stop}
}

// Next returns the next event. Text parts surface as [parley.EventDelta];
// the end of the iterator surfaces as [parley.EventDone], after which Next
// returns io.EOF.
func (s *stream) Next() (parley.Event, error) {
	for {
		if len(s.queue) > 0 {
			evt := s.queue[0]
			s.queue = s.queue[1:]
			return evt, nil
		}
		switch s.state {
		case stateComplete:
			return nil, io.EOF
		case stateError:
			return nil, s.err
		case stateClosed:
			return nil, fmt.Errorf("gemini: %w", parley.ErrStreamClosed)
		}

		resp, err, ok := s.pull()
		if !ok {
			s.state = stateComplete
			return parley.EventDone{FullText: s.text.String(), HasFullText: true}, nil
		}
		if err != nil {
			if ctxErr := s.ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			s.state = stateError
			s.err = fmt.Errorf("gemini: %w", err)
			return nil, s.err
		}
		s.process(resp)
	}
}

func (s *stream) process(resp *genai.GenerateContentResponse) {
	if resp == nil {
		return
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		s.state = stateComplete
		s.queue = append(s.queue, parley.EventError{Message: fmt.Sprintf("prompt blocked: %s", fb.BlockReason)})
		return
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		s.text.WriteString(part.Text)
		s.queue = append(s.queue, parley.EventDelta{Text: part.Text})
	}
}

// Close stops the underlying iterator.
func (s *stream) Close() error {
	if s.state == stateClosed {
		return nil
	}
	s.state = stateClosed
	s.queue = nil
	s.stop()
	return nil
}
