package parley

// TargetKind identifies what a message target displays.
type TargetKind string

const (
	TargetUser      TargetKind = "user"
	TargetAssistant TargetKind = "assistant"
	TargetError     TargetKind = "error"
)

// RenderSink is the display surface. Implementations must be safe to call
// from the controller goroutine and must not block for long.
type RenderSink interface {
	CreateMessageTarget(kind TargetKind) MessageTarget
	SetStatus(status Status)
}

// MessageTarget is one message on the display surface.
type MessageTarget interface {
	// Append adds text to the end of the message.
	Append(text string)
	// SetText replaces the message's text.
	SetText(text string)
}

// Status describes the client for a status line.
type Status struct {
	Mode       SessionMode
	Session    SessionState
	Connection ConnectionState
	// Attempt is the number of consecutive reconnect attempts so far.
	Attempt int
	// Message is a short human-readable note, e.g. why a session ended.
	Message string
}
