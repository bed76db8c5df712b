package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/parley"
	"github.com/fwojciec/parley/anthropic"
	"github.com/fwojciec/parley/gemini"
	"github.com/fwojciec/parley/sse"
)

const (
	providerEndpoint  = "endpoint"
	providerAnthropic = "anthropic"
	providerGemini    = "gemini"
)

// backend holds what the requester is built from. Key values come from the
// environment and are passed in by main.
type backend struct {
	name         string
	endpoint     string
	key          string
	model        string
	systemPrompt string
}

// resolveBackend selects the request-mode backend. An endpoint wins
// auto-detection; otherwise the provider is inferred from whichever API key
// is set.
func resolveBackend(cfg config, anthropicEnvKey, geminiEnvKey string) (backend, error) {
	b := backend{
		name:         cfg.Provider,
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
	}

	if b.name == "" {
		hasAnthropic := anthropicEnvKey != ""
		hasGemini := geminiEnvKey != ""
		switch {
		case cfg.Endpoint != "":
			b.name = providerEndpoint
		case hasAnthropic && hasGemini:
			return backend{}, fmt.Errorf("multiple API keys found (ANTHROPIC_API_KEY, GEMINI_API_KEY): use --provider to select")
		case hasAnthropic:
			b.name = providerAnthropic
		case hasGemini:
			b.name = providerGemini
		default:
			return backend{}, fmt.Errorf("no backend configured: set --endpoint, ANTHROPIC_API_KEY or GEMINI_API_KEY")
		}
	}

	switch b.name {
	case providerEndpoint:
		if b.endpoint == "" {
			return backend{}, fmt.Errorf("endpoint provider needs --endpoint or PARLEY_ENDPOINT")
		}
	case providerAnthropic:
		b.key = firstNonEmpty(cfg.APIKey, anthropicEnvKey)
		if b.key == "" {
			return backend{}, fmt.Errorf("ANTHROPIC_API_KEY not set (use --api-key or the environment variable)")
		}
	case providerGemini:
		b.key = firstNonEmpty(cfg.APIKey, geminiEnvKey)
		if b.key == "" {
			return backend{}, fmt.Errorf("GEMINI_API_KEY not set (use --api-key or the environment variable)")
		}
	default:
		return backend{}, fmt.Errorf("unknown provider %q: must be \"endpoint\", \"anthropic\" or \"gemini\"", b.name)
	}
	return b, nil
}

// newRequester constructs the requester for b.
func newRequester(ctx context.Context, b backend, logger *slog.Logger, metrics parley.Metrics) (parley.Requester, error) {
	switch b.name {
	case providerEndpoint:
		return sse.New(b.endpoint, sse.WithLogger(logger), sse.WithMetrics(metrics)), nil
	case providerAnthropic:
		opts := []anthropic.Option{anthropic.WithLogger(logger)}
		if b.model != "" {
			opts = append(opts, anthropic.WithModel(b.model))
		}
		if b.systemPrompt != "" {
			opts = append(opts, anthropic.WithSystemPrompt(b.systemPrompt))
		}
		return anthropic.New(b.key, opts...), nil
	case providerGemini:
		var opts []gemini.Option
		if b.model != "" {
			opts = append(opts, gemini.WithModel(b.model))
		}
		if b.systemPrompt != "" {
			opts = append(opts, gemini.WithSystemPrompt(b.systemPrompt))
		}
		return gemini.New(ctx, b.key, opts...)
	default:
		return nil, fmt.Errorf("unknown provider %q", b.name)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
