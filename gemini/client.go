package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/parley"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ parley.Requester = (*Client)(nil)

// Client implements [parley.Requester] for the Google Gemini API.
type Client struct {
	client       *genai.Client
	model        string
	maxTokens    int
	systemPrompt string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gemini-3.1-pro-preview.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithMaxTokens overrides the default output token limit.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithSystemPrompt sets the system instruction sent with every request.
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) { c.systemPrompt = prompt }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client:    gc,
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Stream sends text as a single user turn and returns a
// [parley.EventStream] over the streamed reply.
func (c *Client) Stream(ctx context.Context, text string) (parley.EventStream, error) {
	contents := buildContents(text)
	config := buildConfig(c.systemPrompt, c.maxTokens)
	seq := c.client.Models.GenerateContentStream(ctx, c.model, contents, config)
	return NewStreamFromIter(ctx, seq), nil
}

func buildContents(text string) []*genai.Content {
	return []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: text}},
	}}
}

func buildConfig(systemPrompt string, maxTokens int) *genai.GenerateContentConfig {
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}
	return config
}
