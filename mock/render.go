package mock

import "github.com/fwojciec/parley"

// Interface compliance checks.
var (
	_ parley.RenderSink    = (*RenderSink)(nil)
	_ parley.MessageTarget = (*MessageTarget)(nil)
)

// RenderSink is a test double for parley.RenderSink.
// CreateMessageTargetFn panics when nil. SetStatusFn is nil-safe.
type RenderSink struct {
	CreateMessageTargetFn func(kind parley.TargetKind) parley.MessageTarget
	SetStatusFn           func(status parley.Status)
}

// CreateMessageTarget delegates to CreateMessageTargetFn.
func (s *RenderSink) CreateMessageTarget(kind parley.TargetKind) parley.MessageTarget {
	return s.CreateMessageTargetFn(kind)
}

// SetStatus delegates to SetStatusFn.
func (s *RenderSink) SetStatus(status parley.Status) {
	if s.SetStatusFn != nil {
		s.SetStatusFn(status)
	}
}

// MessageTarget is a test double for parley.MessageTarget.
// Both function fields are nil-safe.
type MessageTarget struct {
	AppendFn  func(text string)
	SetTextFn func(text string)
}

// Append delegates to AppendFn.
func (t *MessageTarget) Append(text string) {
	if t.AppendFn != nil {
		t.AppendFn(text)
	}
}

// SetText delegates to SetTextFn.
func (t *MessageTarget) SetText(text string) {
	if t.SetTextFn != nil {
		t.SetTextFn(text)
	}
}
