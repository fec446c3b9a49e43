// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate talks to the generative text service. Backends return
// the raw response text; turning it into records is the parser's job.
package generate

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/faq-engine/pkg/types"
)

const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
)

// ErrEmptyResponse is returned when the service answers without any text.
var ErrEmptyResponse = errors.New("generation service returned no text")

// ErrMissingAPIKey is returned by New when no credential is configured.
var ErrMissingAPIKey = errors.New("API key is not set")

// Generator abstracts the generative text service so tests can supply a
// fake. Each call sends one prompt and returns the raw response text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// New returns the backend selected by cfg.Provider.
func New(cfg types.AIConfig, client *http.Client) (Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s backend: %w", cfg.Provider, ErrMissingAPIKey)
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	switch cfg.Provider {
	case ProviderGemini, "":
		return &GeminiBackend{APIKey: cfg.APIKey, Model: cfg.Model, Client: client}, nil
	case ProviderClaude:
		return &ClaudeBackend{APIKey: cfg.APIKey, Model: cfg.Model, MaxTokens: cfg.MaxTokens, Client: client}, nil
	default:
		return nil, fmt.Errorf("unknown model provider %q: use %s or %s", cfg.Provider, ProviderGemini, ProviderClaude)
	}
}
