package parley

// ConnectionState is the lifecycle state of the persistent transport.
//
// Transitions: disconnected -> connecting -> connected -> (closing|erroring)
// -> reconnecting -> connecting -> ... Disconnected is also the terminal
// state after an explicit stop or after reconnect attempts are exhausted.
type ConnectionState int

const (
	ConnDisconnected ConnectionState = iota
	ConnConnecting
	ConnConnected
	ConnClosing
	ConnErroring
	ConnReconnecting
)

func (s ConnectionState) String() string {
	switch s {
	case ConnDisconnected:
		return "disconnected"
	case ConnConnecting:
		return "connecting"
	case ConnConnected:
		return "connected"
	case ConnClosing:
		return "closing"
	case ConnErroring:
		return "erroring"
	case ConnReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}
