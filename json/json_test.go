package json_test

import (
	"encoding/json"
	"testing"

	"github.com/fwojciec/parley"
	parleyjson "github.com/fwojciec/parley/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    parley.Event
	}{
		{"delta", `{"delta":"He"}`, parley.EventDelta{Text: "He"}},
		{"empty delta", `{"delta":""}`, parley.EventDelta{Text: ""}},
		{"done with full response", `{"done":true,"full_response":"Hello"}`, parley.EventDone{FullText: "Hello", HasFullText: true}},
		{"done with empty full response", `{"done":true,"full_response":""}`, parley.EventDone{HasFullText: true}},
		{"done without full response", `{"done":true}`, parley.EventDone{}},
		{"error string", `{"error":"rate limited"}`, parley.EventError{Message: "rate limited"}},
		{"error object", `{"error":{"message":"overloaded"}}`, parley.EventError{Message: "overloaded"}},
		{"error wins over done", `{"done":true,"error":"boom"}`, parley.EventError{Message: "boom"}},
		{"unicode delta", `{"delta":"héllo 世界"}`, parley.EventDelta{Text: "héllo 世界"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parleyjson.DecodeRecord([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeRecord_Malformed(t *testing.T) {
	t.Parallel()

	_, err := parleyjson.DecodeRecord([]byte(`{"delta":`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, parleyjson.ErrUnknownPayload)
}

func TestDecodeRecord_Unknown(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{`{}`, `{"done":false}`, `{"error":null}`, `{"other":1}`} {
		_, err := parleyjson.DecodeRecord([]byte(payload))
		assert.ErrorIs(t, err, parleyjson.ErrUnknownPayload, payload)
	}
}

func TestDecodeFrame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    parley.Event
	}{
		{"response delta", `{"type":"response_delta","delta":"H"}`, parley.EventResponseDelta{Text: "H"}},
		{"response complete", `{"type":"response_complete","response":"Hello"}`, parley.EventResponseComplete{FullText: "Hello", HasFullText: true}},
		{"response complete with empty text", `{"type":"response_complete","response":""}`, parley.EventResponseComplete{HasFullText: true}},
		{"response complete without text", `{"type":"response_complete"}`, parley.EventResponseComplete{}},
		{"error", `{"type":"error","error":{"message":"session expired"}}`, parley.EventError{Message: "session expired"}},
		{"error without detail", `{"type":"error"}`, parley.EventError{Message: "unknown error"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parleyjson.DecodeFrame([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeFrame_Rejects(t *testing.T) {
	t.Parallel()

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()
		_, err := parleyjson.DecodeFrame([]byte(`{"type":"session.created"}`))
		assert.ErrorIs(t, err, parleyjson.ErrUnknownPayload)
	})

	t.Run("delta missing", func(t *testing.T) {
		t.Parallel()
		_, err := parleyjson.DecodeFrame([]byte(`{"type":"response_delta"}`))
		require.Error(t, err)
		assert.NotErrorIs(t, err, parleyjson.ErrUnknownPayload)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		_, err := parleyjson.DecodeFrame([]byte(`not json`))
		require.Error(t, err)
	})
}

func TestEncodeRequest(t *testing.T) {
	t.Parallel()

	data, err := parleyjson.EncodeRequest("hi \"there\"")
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, map[string]any{"text": "hi \"there\""}, body)
}
