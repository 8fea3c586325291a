/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package embedding turns question text into fixed-length vectors for the
// metadata similarity search.
package embedding

import (
	"context"
	"fmt"
)

// Provider defines the interface for embedding generation
type Provider interface {
	// Embed generates an embedding vector for the given text
	Embed(ctx context.Context, text string) ([]float64, error)

	// Dimensions returns the number of dimensions in the embedding vector,
	// or 0 when not yet known
	Dimensions() int

	// ModelName returns the name of the model being used
	ModelName() string

	// ProviderName returns the name of the provider (e.g., "tei", "ollama", "openai")
	ProviderName() string
}

// Config holds configuration for embedding providers
type Config struct {
	Provider string // "tei", "ollama", or "openai"
	Model    string // Model name (provider-specific)

	// MaxTokens is the truncation ceiling applied to input text before
	// embedding. Zero uses DefaultMaxTokens; negative disables truncation.
	MaxTokens int

	// OpenAI-specific
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// Ollama-specific
	OllamaURL string

	// Text-embeddings-inference specific
	TEIURL string
}

// NewProvider creates a new embedding provider based on configuration. The
// returned provider truncates its input at the configured token ceiling.
func NewProvider(cfg Config) (Provider, error) {
	var (
		p   Provider
		err error
	)

	switch cfg.Provider {
	case "tei":
		if cfg.TEIURL == "" {
			cfg.TEIURL = "http://localhost:8080"
		}
		p, err = NewTEIProvider(cfg.TEIURL, cfg.Model)

	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required when provider is 'openai'")
		}
		p, err = NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.Model, cfg.OpenAIBaseURL)

	case "ollama":
		if cfg.OllamaURL == "" {
			cfg.OllamaURL = "http://localhost:11434"
		}
		p, err = NewOllamaProvider(cfg.OllamaURL, cfg.Model)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (supported: tei, openai, ollama)", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}
	if maxTokens < 0 {
		return p, nil
	}
	return NewTruncating(p, maxTokens), nil
}
