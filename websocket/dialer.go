package websocket

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/parley"
	"github.com/gorilla/websocket"
)

// Interface compliance check.
var _ parley.Dialer = (*Dialer)(nil)

// Dialer opens sockets to a fixed URL.
type Dialer struct {
	url              string
	header           http.Header
	handshakeTimeout time.Duration
	writeWait        time.Duration
	pingInterval     time.Duration
	closeGrace       time.Duration
	readLimit        int64
	logger           *slog.Logger
	metrics          parley.Metrics
}

// Option configures a [Dialer].
type Option func(*Dialer)

// WithHeader adds a header sent during the handshake.
func WithHeader(key, value string) Option {
	return func(d *Dialer) { d.header.Add(key, value) }
}

// WithHandshakeTimeout bounds how long the opening handshake may take.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(d *Dialer) { d.handshakeTimeout = timeout }
}

// WithPingInterval sets the heartbeat period. Zero disables pings.
func WithPingInterval(interval time.Duration) Option {
	return func(d *Dialer) { d.pingInterval = interval }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dialer) { d.logger = l }
}

// WithMetrics sets the metrics sink for decode failures.
func WithMetrics(m parley.Metrics) Option {
	return func(d *Dialer) { d.metrics = m }
}

// NewDialer creates a [Dialer] for url (ws:// or wss://).
func NewDialer(url string, opts ...Option) *Dialer {
	d := &Dialer{
		url:              url,
		header:           make(http.Header),
		handshakeTimeout: DefaultHandshakeTimeout,
		writeWait:        DefaultWriteWait,
		pingInterval:     DefaultPingInterval,
		closeGrace:       DefaultCloseGracePeriod,
		readLimit:        DefaultMaxMessageSize,
		logger:           slog.Default(),
		metrics:          parley.NopMetrics{},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Dial performs the opening handshake and returns the connected socket.
func (d *Dialer) Dial(ctx context.Context) (parley.Socket, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: d.handshakeTimeout,
		TLSClientConfig:  &tls.Config{MinVersion: tls.VersionTLS12},
	}

	d.logger.Debug("websocket: dialing", "url", d.url)
	conn, resp, err := dialer.DialContext(ctx, d.url, d.header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket: dial: HTTP %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket: dial: %w", err)
	}
	conn.SetReadLimit(d.readLimit)

	s := newSocket(conn, d)
	if d.pingInterval > 0 {
		go s.heartbeat(d.pingInterval)
	}
	d.logger.Info("websocket: connected", "url", d.url)
	return s, nil
}
