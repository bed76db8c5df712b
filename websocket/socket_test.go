package websocket_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/parley"
	"github.com/fwojciec/parley/mock"
	parleyws "github.com/fwojciec/parley/websocket"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// serve starts a server that upgrades every request and hands the server
// side of the connection to handle.
func serve(t *testing.T, handle func(conn *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string, opts ...parleyws.Option) parley.Socket {
	t.Helper()
	opts = append([]parleyws.Option{parleyws.WithLogger(discard)}, opts...)
	s, err := parleyws.NewDialer(url, opts...).Dial(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSocket_ReceiveDecodesFrames(t *testing.T) {
	t.Parallel()

	url := serve(t, func(conn *websocket.Conn) {
		frames := []string{
			`{"type":"session.created"}`,
			`{"type":"response_delta","delta":"Hel"}`,
			`{"type":"response_delta",`,
			`{"type":"response_delta","delta":"lo"}`,
			`{"type":"response_complete","response":"Hello"}`,
		}
		_ = conn.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02})
		for _, f := range frames {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(f))
		}
		_, _, _ = conn.ReadMessage()
	})

	var failures int
	s := dial(t, url, parleyws.WithMetrics(&mock.Metrics{
		DecodeFailedFn: func(source string) {
			assert.Equal(t, "websocket", source)
			failures++
		},
	}))

	var got []parley.Event
	for len(got) < 3 {
		evt, err := s.Receive(context.Background())
		require.NoError(t, err)
		got = append(got, evt)
	}
	assert.Equal(t, []parley.Event{
		parley.EventResponseDelta{Text: "Hel"},
		parley.EventResponseDelta{Text: "lo"},
		parley.EventResponseComplete{FullText: "Hello", HasFullText: true},
	}, got)
	assert.Equal(t, 1, failures)
}

func TestSocket_SendWritesBinaryFrames(t *testing.T) {
	t.Parallel()

	received := make(chan []byte, 1)
	url := serve(t, func(conn *websocket.Conn) {
		msgType, data, err := conn.ReadMessage()
		if err == nil && msgType == websocket.BinaryMessage {
			received <- data
		}
	})

	s := dial(t, url)
	require.NoError(t, s.Send([]byte{0x10, 0x00, 0xff, 0x7f}))

	select {
	case data := <-received:
		assert.Equal(t, []byte{0x10, 0x00, 0xff, 0x7f}, data)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not receive frame")
	}
}

func TestSocket_CloseSendsNormalClosure(t *testing.T) {
	t.Parallel()

	closeCode := make(chan int, 1)
	url := serve(t, func(conn *websocket.Conn) {
		_, _, err := conn.ReadMessage()
		if ce, ok := err.(*websocket.CloseError); ok {
			closeCode <- ce.Code
		}
	})

	s := dial(t, url)
	require.NoError(t, s.Close())
	assert.NoError(t, s.Close())

	select {
	case code := <-closeCode:
		assert.Equal(t, websocket.CloseNormalClosure, code)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not observe close frame")
	}

	err := s.Send([]byte{1})
	assert.ErrorIs(t, err, parley.ErrNotConnected)
}

func TestSocket_ReceiveHonorsContext(t *testing.T) {
	t.Parallel()

	url := serve(t, func(conn *websocket.Conn) {
		_, _, _ = conn.ReadMessage()
	})
	s := dial(t, url)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := s.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSocket_ReceiveReportsServerClose(t *testing.T) {
	t.Parallel()

	url := serve(t, func(conn *websocket.Conn) {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "restarting")
		_ = conn.WriteMessage(websocket.CloseMessage, msg)
	})
	s := dial(t, url)

	_, err := s.Receive(context.Background())
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(unwrapAll(err), websocket.CloseGoingAway))
}

func TestDialer_SendsHeaders(t *testing.T) {
	t.Parallel()

	gotHeader := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader <- r.Header.Get("X-Client")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(srv.Close)

	dial(t, "ws"+strings.TrimPrefix(srv.URL, "http"), parleyws.WithHeader("X-Client", "parley"))
	assert.Equal(t, "parley", <-gotHeader)
}

func TestDialer_HandshakeRejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	d := parleyws.NewDialer("ws"+strings.TrimPrefix(srv.URL, "http"), parleyws.WithLogger(discard))
	_, err := d.Dial(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 403")
}

func TestDialer_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	d := parleyws.NewDialer(url, parleyws.WithLogger(discard), parleyws.WithHandshakeTimeout(time.Second))
	_, err := d.Dial(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "websocket: dial")
}

func unwrapAll(err error) error {
	for {
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		next := u.Unwrap()
		if next == nil {
			return err
		}
		err = next
	}
}
