/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	// OllamaHTTPTimeout is the HTTP client timeout for Ollama API requests.
	// Ollama may need to load the model first.
	OllamaHTTPTimeout = 60 * time.Second
)

// OllamaProvider implements embedding generation using Ollama
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

type ollamaEmbeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// Ollama returns one embedding per input text
type ollamaEmbeddingResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

var (
	ollamaModelDimensionsMu sync.RWMutex

	// Unknown models are added on first use
	ollamaModelDimensions = map[string]int{
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		"bge-small-en":      384,
		"bge-m3":            1024,
	}
)

// NewOllamaProvider creates a new Ollama embedding provider
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}

	LogProviderInit("ollama", model, map[string]string{
		"base_url": baseURL,
	})

	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client: &http.Client{
			Timeout: OllamaHTTPTimeout,
		},
	}, nil
}

// Embed generates an embedding vector for the given text
func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	start := time.Now()
	call := embedCall{
		provider: "ollama",
		model:    p.model,
		url:      p.baseURL + "/api/embed",
		body:     ollamaEmbeddingRequest{Model: p.model, Input: text},
		text:     text,
	}

	var resp ollamaEmbeddingResponse
	status, err := postJSON(ctx, p.client, call, &resp)
	if err != nil {
		return nil, fmt.Errorf("ollama at %s: %w", p.baseURL, err)
	}

	var vec []float64
	if len(resp.Embeddings) > 0 {
		vec = resp.Embeddings[0]
	}
	vec, err = finish(call, start, status, vec)
	if err != nil {
		return nil, fmt.Errorf("%w (model may not be installed: try 'ollama pull %s')", err, p.model)
	}

	ollamaModelDimensionsMu.Lock()
	if _, ok := ollamaModelDimensions[p.model]; !ok {
		ollamaModelDimensions[p.model] = len(vec)
	}
	ollamaModelDimensionsMu.Unlock()

	return vec, nil
}

// Dimensions returns the number of dimensions for this model, or 0 before
// the first call for an unknown model
func (p *OllamaProvider) Dimensions() int {
	ollamaModelDimensionsMu.RLock()
	defer ollamaModelDimensionsMu.RUnlock()
	return ollamaModelDimensions[p.model]
}

// ModelName returns the model name
func (p *OllamaProvider) ModelName() string {
	return p.model
}

// ProviderName returns "ollama"
func (p *OllamaProvider) ProviderName() string {
	return "ollama"
}
