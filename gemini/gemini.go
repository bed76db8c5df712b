// Package gemini implements [parley.Requester] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK. Streaming uses the SDK's
// iter.Seq2 iterator, wrapped into the pull-based [parley.EventStream]
// interface. Thought parts are not rendered.
package gemini

const (
	defaultModel     = "gemini-3.1-pro-preview"
	defaultMaxTokens = 65536
)
