package gemini_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/fwojciec/parley"
	"github.com/fwojciec/parley/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// mockChunks returns a genai-style streaming iterator from pre-built chunks.
func mockChunks(chunks []*genai.GenerateContentResponse) func(func(*genai.GenerateContentResponse, error) bool) {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func textChunk(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: parts},
		}},
	}
}

func collectStreamEvents(t *testing.T, s parley.EventStream) []parley.Event {
	t.Helper()
	var events []parley.Event
	for {
		evt, err := s.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		events = append(events, evt)
	}
	return events
}

func TestStream_TextDelta(t *testing.T) {
	t.Parallel()

	chunks := []*genai.GenerateContentResponse{
		textChunk(&genai.Part{Text: "Hello"}),
		textChunk(&genai.Part{Text: " world"}),
	}
	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))

	assert.Equal(t, []parley.Event{
		parley.EventDelta{Text: "Hello"},
		parley.EventDelta{Text: " world"},
		parley.EventDone{FullText: "Hello world", HasFullText: true},
	}, collectStreamEvents(t, s))

	_, err := s.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStream_MultiplePartsInOneChunk(t *testing.T) {
	t.Parallel()

	chunks := []*genai.GenerateContentResponse{
		textChunk(&genai.Part{Text: "a"}, &genai.Part{Text: "b"}),
	}
	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))

	assert.Equal(t, []parley.Event{
		parley.EventDelta{Text: "a"},
		parley.EventDelta{Text: "b"},
		parley.EventDone{FullText: "ab", HasFullText: true},
	}, collectStreamEvents(t, s))
}

func TestStream_SkipsThoughtsAndEmptyChunks(t *testing.T) {
	t.Parallel()

	chunks := []*genai.GenerateContentResponse{
		textChunk(&genai.Part{Text: "pondering", Thought: true}),
		{},
		{Candidates: []*genai.Candidate{{}}},
		textChunk(&genai.Part{Text: "Answer"}),
	}
	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))

	assert.Equal(t, []parley.Event{
		parley.EventDelta{Text: "Answer"},
		parley.EventDone{FullText: "Answer", HasFullText: true},
	}, collectStreamEvents(t, s))
}

func TestStream_BlockedPrompt(t *testing.T) {
	t.Parallel()

	chunks := []*genai.GenerateContentResponse{{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{
			BlockReason: "SAFETY",
		},
	}}
	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))

	events := collectStreamEvents(t, s)
	require.Len(t, events, 1)
	errEvt, ok := events[0].(parley.EventError)
	require.True(t, ok)
	assert.Contains(t, errEvt.Message, "prompt blocked")
}

func TestStream_IteratorError(t *testing.T) {
	t.Parallel()

	seq := func(yield func(*genai.GenerateContentResponse, error) bool) {
		if !yield(textChunk(&genai.Part{Text: "par"}), nil) {
			return
		}
		yield(nil, errors.New("stream reset"))
	}
	s := gemini.NewStreamFromIter(context.Background(), seq)

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, parley.EventDelta{Text: "par"}, evt)

	_, err = s.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini: stream reset")

	_, again := s.Next()
	assert.Equal(t, err, again)
}

func TestStream_NextAfterClose(t *testing.T) {
	t.Parallel()

	s := gemini.NewStreamFromIter(context.Background(), mockChunks([]*genai.GenerateContentResponse{
		textChunk(&genai.Part{Text: "x"}),
	}))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.Next()
	assert.ErrorIs(t, err, parley.ErrStreamClosed)
}
