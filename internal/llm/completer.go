/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package llm provides chat completion clients for the SQL synthesis and
// result summary prompts.
package llm

import (
	"context"
	"fmt"
	"time"
)

const (
	// DefaultTemperature keeps generated SQL close to deterministic
	DefaultTemperature = 0.1

	// DefaultMaxTokens bounds the length of a completion
	DefaultMaxTokens = 400

	// HTTPTimeout is the HTTP client timeout for completion requests
	HTTPTimeout = 120 * time.Second
)

// CompletionRequest is a single system + user exchange
type CompletionRequest struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Completer produces the assistant text for a request
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Config holds configuration for completion providers
type Config struct {
	Provider string // "azure", "openai", "anthropic", or "ollama"
	Model    string

	APIKey  string
	BaseURL string

	// Azure OpenAI
	AzureEndpoint   string
	AzureDeployment string
	AzureAPIVersion string
}

// NewCompleter creates a completion client based on configuration
func NewCompleter(cfg Config) (Completer, error) {
	switch cfg.Provider {
	case "azure":
		return NewAzureClient(cfg.AzureEndpoint, cfg.APIKey, cfg.AzureDeployment, cfg.AzureAPIVersion)
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case "anthropic":
		return NewAnthropicClient(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case "ollama":
		return NewOllamaClient(cfg.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: azure, openai, anthropic, ollama)", cfg.Provider)
	}
}

// withDefaults fills unset generation parameters
func withDefaults(req CompletionRequest) CompletionRequest {
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	if req.Temperature < 0 {
		req.Temperature = DefaultTemperature
	}
	return req
}
