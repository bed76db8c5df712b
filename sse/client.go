package sse

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fwojciec/parley"
	parleyjson "github.com/fwojciec/parley/json"
)

// Interface compliance check.
var _ parley.Requester = (*Client)(nil)

// maxErrorBody caps how much of a failed response is read into the error.
const maxErrorBody = 4096

// Client implements [parley.Requester] for the chat endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	header     http.Header
	logger     *slog.Logger
	metrics    parley.Metrics
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Add(key, value) }
}

// WithLogger sets the logger used for skipped records.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics sets the metrics sink for decode failures.
func WithMetrics(m parley.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a [Client] posting to endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: http.DefaultClient,
		header:     make(http.Header),
		logger:     slog.Default(),
		metrics:    parley.NopMetrics{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream posts text to the endpoint and returns a [parley.EventStream] over
// the response body.
func (c *Client) Stream(ctx context.Context, text string) (parley.EventStream, error) {
	body, err := parleyjson.EncodeRequest(text)
	if err != nil {
		return nil, fmt.Errorf("sse: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("sse: %w", err)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sse: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}

	c.logger.Debug("sse: stream opened", "endpoint", c.endpoint)
	return newStream(ctx, resp.Body, NewDecoder(c.logger, c.metrics)), nil
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("sse: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("sse: HTTP %d: %s", resp.StatusCode, msg)
}
