package anthropic_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/parley/anthropic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestClient_RequestFormat(t *testing.T) {
	t.Parallel()

	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)

		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "test-api-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("Anthropic-Version"))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)

		textStreamResponse().handler()(w, r)
	}))
	defer srv.Close()

	client := anthropic.New("test-api-key",
		anthropic.WithBaseURL(srv.URL),
		anthropic.WithModel("claude-opus-4-20250514"),
		anthropic.WithMaxTokens(1024),
		anthropic.WithSystemPrompt("You are helpful."),
		anthropic.WithLogger(discard),
	)
	s, err := client.Stream(context.Background(), "Hello")
	require.NoError(t, err)
	defer s.Close()

	var body map[string]any
	require.NoError(t, json.Unmarshal(captured, &body))

	assert.Equal(t, "claude-opus-4-20250514", body["model"])
	assert.Equal(t, float64(1024), body["max_tokens"])
	assert.Equal(t, true, body["stream"])

	system := body["system"].([]any)
	require.Len(t, system, 1)
	assert.Equal(t, "You are helpful.", system[0].(map[string]any)["text"])

	msgs := body["messages"].([]any)
	require.Len(t, msgs, 1)
	msg0 := msgs[0].(map[string]any)
	assert.Equal(t, "user", msg0["role"])
	content0 := msg0["content"].([]any)
	require.Len(t, content0, 1)
	block0 := content0[0].(map[string]any)
	assert.Equal(t, "text", block0["type"])
	assert.Equal(t, "Hello", block0["text"])
}

func TestClient_DefaultModelAndMaxTokens(t *testing.T) {
	t.Parallel()

	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		textStreamResponse().handler()(w, r)
	}))
	defer srv.Close()

	client := anthropic.New("k", anthropic.WithBaseURL(srv.URL), anthropic.WithLogger(discard))
	s, err := client.Stream(context.Background(), "Hi")
	require.NoError(t, err)
	defer s.Close()

	var body map[string]any
	require.NoError(t, json.Unmarshal(captured, &body))
	assert.Equal(t, "claude-sonnet-4-20250514", body["model"])
	assert.Equal(t, float64(8192), body["max_tokens"])
	_, hasSystem := body["system"]
	assert.False(t, hasSystem)
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"max_tokens: integer above 1 expected"}}`))
	}))
	defer srv.Close()

	client := anthropic.New("test-key", anthropic.WithBaseURL(srv.URL))
	_, err := client.Stream(context.Background(), "Hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 400")
	assert.Contains(t, err.Error(), "invalid_request_error")
	assert.Contains(t, err.Error(), "max_tokens")
}

func TestClient_HTTPErrorNonJSON(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal server error"))
	}))
	defer srv.Close()

	client := anthropic.New("test-key", anthropic.WithBaseURL(srv.URL))
	_, err := client.Stream(context.Background(), "Hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "internal server error")
}
