// Package json converts between parley's domain events and the JSON wire
// payloads carried by the chat endpoint and the voice socket.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/parley"
)

// ErrUnknownPayload indicates well-formed JSON that maps to no event.
// Callers skip such payloads.
var ErrUnknownPayload = errors.New("unknown payload")

// recordDTO is a chunked-stream record payload. Exactly one of the shapes
// {"delta"}, {"done","full_response"?} or {"error"} is expected.
type recordDTO struct {
	Delta        *string         `json:"delta,omitempty"`
	Done         bool            `json:"done,omitempty"`
	FullResponse *string         `json:"full_response,omitempty"`
	Error        json.RawMessage `json:"error,omitempty"`
}

// frameDTO is a socket text frame with a type discriminator.
type frameDTO struct {
	Type     string          `json:"type"`
	Delta    *string         `json:"delta,omitempty"`
	Response *string         `json:"response,omitempty"`
	Error    json.RawMessage `json:"error,omitempty"`
}

// requestDTO is the request-mode POST body.
type requestDTO struct {
	Text string `json:"text"`
}

const (
	frameResponseDelta    = "response_delta"
	frameResponseComplete = "response_complete"
	frameError            = "error"
)

// DecodeRecord maps one chunked-stream record payload to an event. An error
// takes precedence over done, which takes precedence over delta.
func DecodeRecord(data []byte) (parley.Event, error) {
	var dto recordDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	switch {
	case len(dto.Error) > 0 && string(dto.Error) != "null":
		return parley.EventError{Message: errorMessage(dto.Error)}, nil
	case dto.Done:
		return parley.EventDone{FullText: deref(dto.FullResponse), HasFullText: dto.FullResponse != nil}, nil
	case dto.Delta != nil:
		return parley.EventDelta{Text: *dto.Delta}, nil
	default:
		return nil, ErrUnknownPayload
	}
}

// DecodeFrame maps one socket text frame to an event.
func DecodeFrame(data []byte) (parley.Event, error) {
	var dto frameDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("unmarshal frame: %w", err)
	}
	switch dto.Type {
	case frameResponseDelta:
		if dto.Delta == nil {
			return nil, fmt.Errorf("%s frame without delta", dto.Type)
		}
		return parley.EventResponseDelta{Text: *dto.Delta}, nil
	case frameResponseComplete:
		return parley.EventResponseComplete{FullText: deref(dto.Response), HasFullText: dto.Response != nil}, nil
	case frameError:
		return parley.EventError{Message: errorMessage(dto.Error)}, nil
	default:
		return nil, fmt.Errorf("%w: type %q", ErrUnknownPayload, dto.Type)
	}
}

// EncodeRequest returns the POST body for a request-mode turn.
func EncodeRequest(text string) ([]byte, error) {
	return json.Marshal(requestDTO{Text: text})
}

// errorMessage accepts either a bare string or an object with a message
// field, falling back to the raw JSON.
func errorMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	if len(raw) == 0 {
		return "unknown error"
	}
	return strings.TrimSpace(string(raw))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
