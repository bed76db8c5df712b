package mock_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/fwojciec/parley"
	"github.com/fwojciec/parley/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequester_Stream(t *testing.T) {
	t.Parallel()
	t.Run("delegates to StreamFn", func(t *testing.T) {
		t.Parallel()
		var s mock.EventStream
		r := mock.Requester{
			StreamFn: func(ctx context.Context, text string) (parley.EventStream, error) {
				assert.Equal(t, "hi", text)
				return &s, nil
			},
		}
		got, err := r.Stream(context.Background(), "hi")
		require.NoError(t, err)
		assert.Equal(t, &s, got)
	})

	t.Run("panics when StreamFn not set", func(t *testing.T) {
		t.Parallel()
		r := mock.Requester{}
		assert.Panics(t, func() {
			_, _ = r.Stream(context.Background(), "hi")
		})
	})
}

func TestEventStream(t *testing.T) {
	t.Parallel()
	t.Run("delegates to NextFn", func(t *testing.T) {
		t.Parallel()
		s := mock.EventStream{
			NextFn: func() (parley.Event, error) { return nil, io.EOF },
		}
		_, err := s.Next()
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("Close is nil-safe", func(t *testing.T) {
		t.Parallel()
		s := mock.EventStream{}
		assert.NoError(t, s.Close())
	})
}

func TestSocket(t *testing.T) {
	t.Parallel()
	t.Run("nil-safe Send and Close", func(t *testing.T) {
		t.Parallel()
		s := mock.Socket{}
		assert.NoError(t, s.Send([]byte{1}))
		assert.NoError(t, s.Close())
	})

	t.Run("Dial delegates", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("refused")
		d := mock.Dialer{
			DialFn: func(ctx context.Context) (parley.Socket, error) { return nil, wantErr },
		}
		_, err := d.Dial(context.Background())
		assert.ErrorIs(t, err, wantErr)
	})
}

func TestCaptureDevice(t *testing.T) {
	t.Parallel()

	var handler func([]byte)
	stream := &mock.CaptureStream{
		OnChunkFn: func(h func([]byte)) { handler = h },
	}
	d := mock.CaptureDevice{
		AcquireFn: func(ctx context.Context) (parley.CaptureStream, error) { return stream, nil },
	}
	got, err := d.Acquire(context.Background())
	require.NoError(t, err)

	var chunks [][]byte
	got.OnChunk(func(c []byte) { chunks = append(chunks, c) })
	handler([]byte{1, 2})
	assert.Equal(t, [][]byte{{1, 2}}, chunks)
	assert.NoError(t, d.Release())
}

func TestRenderSink(t *testing.T) {
	t.Parallel()

	var appended []string
	target := &mock.MessageTarget{AppendFn: func(s string) { appended = append(appended, s) }}
	sink := mock.RenderSink{
		CreateMessageTargetFn: func(kind parley.TargetKind) parley.MessageTarget {
			assert.Equal(t, parley.TargetAssistant, kind)
			return target
		},
	}
	sink.CreateMessageTarget(parley.TargetAssistant).Append("x")
	sink.SetStatus(parley.Status{})
	target.SetText("ignored")
	assert.Equal(t, []string{"x"}, appended)
}

func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m mock.Metrics
	assert.NotPanics(t, func() {
		m.SessionStarted(parley.ModeRequest)
		m.SessionEnded(parley.ModeRequest, parley.EndCompleted)
		m.DeltasFlushed(5)
		m.Reconciled(true)
		m.DecodeFailed("sse")
		m.ReconnectScheduled(0, 0)
		m.ConnectionStateChanged(parley.ConnConnected)
		m.AudioChunkDropped()
	})
}
