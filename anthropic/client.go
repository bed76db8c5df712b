package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/fwojciec/parley"
)

// Interface compliance check.
var _ parley.Requester = (*Client)(nil)

// Client implements [parley.Requester] for the Anthropic Messages API.
type Client struct {
	apiKey       string
	baseURL      string
	model        string
	maxTokens    int
	systemPrompt string
	httpClient   *http.Client
	logger       *slog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithMaxTokens overrides the default output token limit.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithSystemPrompt sets the system prompt sent with every request.
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) { c.systemPrompt = prompt }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a new Anthropic [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		maxTokens:  defaultMaxTokens,
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream sends text as a single user turn and returns a
// [parley.EventStream] over the streamed reply.
func (c *Client) Stream(ctx context.Context, text string) (parley.EventStream, error) {
	body, err := c.buildRequestBody(text)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}

	return newStream(ctx, resp.Body, c.logger), nil
}

func (c *Client) buildRequestBody(text string) ([]byte, error) {
	apiReq := apiRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Stream:    true,
		System:    convertSystem(c.systemPrompt),
		Messages: []apiMessage{{
			Role:    "user",
			Content: []apiContentBlock{{Type: "text", Text: text}},
		}},
	}
	return json.Marshal(apiReq)
}

// convertSystem converts a system prompt string to an array of content blocks
// suitable for the Anthropic API. Returns nil when the prompt is empty.
func convertSystem(prompt string) []apiContentBlock {
	if prompt == "" {
		return nil
	}
	return []apiContentBlock{{Type: "text", Text: prompt}}
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("anthropic: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Message == "" {
		return fmt.Errorf("anthropic: HTTP %d: %s", resp.StatusCode, string(body))
	}
	return fmt.Errorf("anthropic: HTTP %d: %s: %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
}
