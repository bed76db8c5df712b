package parley

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrSessionActive indicates a session was started while another is active.
	ErrSessionActive = errors.New("session already active")

	// ErrNoSession indicates an operation that needs an active session found none.
	ErrNoSession = errors.New("no active session")

	// ErrNotConnected indicates a send on a transport that is not connected.
	ErrNotConnected = errors.New("not connected")

	// ErrRetriesExhausted indicates the persistent transport gave up reconnecting.
	ErrRetriesExhausted = errors.New("reconnect attempts exhausted")

	// ErrCaptureUnavailable indicates the capture device could not be acquired.
	ErrCaptureUnavailable = errors.New("capture device unavailable")

	// ErrUnsupportedMode indicates the controller lacks the collaborators a
	// session mode needs.
	ErrUnsupportedMode = errors.New("session mode not configured")

	// ErrControllerClosed indicates the controller's event loop has exited.
	ErrControllerClosed = errors.New("controller closed")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")
)
