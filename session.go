package parley

import "time"

// SessionMode selects the transport a session streams over.
type SessionMode string

const (
	ModeRequest    SessionMode = "request"    // One request, one chunked response.
	ModeContinuous SessionMode = "continuous" // Persistent socket, captured audio.
)

// SessionState is the lifecycle state of a session.
type SessionState int

const (
	SessionIdle       SessionState = iota // No session.
	SessionActive                         // Streaming.
	SessionFinalizing                     // Draining and reconciling.
	SessionClosed                         // Torn down.
)

func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionActive:
		return "active"
	case SessionFinalizing:
		return "finalizing"
	case SessionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// EndReason records why a session ended.
type EndReason string

const (
	EndCompleted          EndReason = "completed"
	EndStopped            EndReason = "stopped"
	EndError              EndReason = "error"
	EndRetriesExhausted   EndReason = "retries_exhausted"
	EndCaptureUnavailable EndReason = "capture_unavailable"
	EndShutdown           EndReason = "shutdown"
)

// Session is a snapshot of one streaming interaction. Text is the
// accumulated text of the response currently being rendered.
type Session struct {
	ID        string
	Mode      SessionMode
	State     SessionState
	Text      string
	CreatedAt time.Time
}
