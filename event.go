package parley

// Event is a sealed interface representing a decoded application event.
// Request-mode transports produce EventDelta, EventDone and EventError.
// Continuous-mode transports produce EventResponseDelta and
// EventResponseComplete (and EventError when the server reports one).
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventDelta carries an incremental text fragment of a request-mode response.
type EventDelta struct {
	Text string
}

func (EventDelta) event() {}

// EventDone terminates a request-mode response. FullText is the server's
// authoritative text when HasFullText is set. An absent text and an empty
// one are different: only the latter replaces what was rendered.
type EventDone struct {
	FullText    string
	HasFullText bool
}

func (EventDone) event() {}

// EventError terminates a response with a server-reported failure.
type EventError struct {
	Message string
}

func (EventError) event() {}

// EventResponseDelta carries an incremental text fragment of a
// continuous-mode response.
type EventResponseDelta struct {
	Text string
}

func (EventResponseDelta) event() {}

// EventResponseComplete terminates one continuous-mode response. FullText is
// the authoritative text when HasFullText is set.
type EventResponseComplete struct {
	FullText    string
	HasFullText bool
}

func (EventResponseComplete) event() {}

// IsTerminal reports whether e ends a logical response.
func IsTerminal(e Event) bool {
	switch e.(type) {
	case EventDone, EventResponseComplete, EventError:
		return true
	default:
		return false
	}
}

// Interface compliance checks.
var (
	_ Event = EventDelta{}
	_ Event = EventDone{}
	_ Event = EventError{}
	_ Event = EventResponseDelta{}
	_ Event = EventResponseComplete{}
)
