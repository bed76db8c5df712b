// Package websocket implements [parley.Dialer] and [parley.Socket] for the
// voice socket using gorilla/websocket.
//
// Outbound audio is written as binary frames. Inbound text frames carry one
// JSON payload each and are decoded into events; binary, unknown and
// malformed frames are skipped.
package websocket

import "time"

// Default connection constants.
const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteWait        = 10 * time.Second
	DefaultPingInterval     = 30 * time.Second
	DefaultCloseGracePeriod = 5 * time.Second
	DefaultMaxMessageSize   = 16 * 1024 * 1024 // 16MB
)

// metricsSource labels decode failures from this package.
const metricsSource = "websocket"
