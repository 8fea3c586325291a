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
	"time"
)

const (
	// OpenAIHTTPTimeout is the HTTP client timeout for OpenAI API requests
	OpenAIHTTPTimeout = 30 * time.Second

	// OpenAIDefaultBaseURL is used when no base URL is configured
	OpenAIDefaultBaseURL = "https://api.openai.com/v1"
)

// OpenAIProvider implements embedding generation against the OpenAI
// embeddings API or any compatible server
type OpenAIProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type openaiEmbeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type openaiEmbeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// Model dimensions for OpenAI embedding models
var openaiModelDimensions = map[string]int{
	"text-embedding-3-large": 3072,
	"text-embedding-3-small": 1536,
	"text-embedding-ada-002": 1536,
}

// NewOpenAIProvider creates a new OpenAI embedding provider. An empty
// baseURL selects the public OpenAI endpoint, where only the known models
// are accepted.
func NewOpenAIProvider(apiKey, model, baseURL string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key cannot be empty")
	}

	if model == "" {
		model = "text-embedding-3-small"
	}

	if baseURL == "" {
		baseURL = OpenAIDefaultBaseURL
		if _, ok := openaiModelDimensions[model]; !ok {
			return nil, fmt.Errorf("unsupported OpenAI model: %s (supported: text-embedding-3-large, text-embedding-3-small, text-embedding-ada-002)", model)
		}
	}
	baseURL = strings.TrimRight(baseURL, "/")

	LogProviderInit("openai", model, map[string]string{
		"api_key":  apiKey,
		"base_url": baseURL,
	})

	return &OpenAIProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: OpenAIHTTPTimeout,
		},
	}, nil
}

// Embed generates an embedding vector for the given text
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	start := time.Now()
	call := embedCall{
		provider: "openai",
		model:    p.model,
		url:      p.baseURL + "/embeddings",
		headers:  map[string]string{"Authorization": "Bearer " + p.apiKey},
		body:     openaiEmbeddingRequest{Model: p.model, Input: text},
		text:     text,
	}

	var resp openaiEmbeddingResponse
	status, err := postJSON(ctx, p.client, call, &resp)
	if err != nil {
		return nil, err
	}

	var vec []float64
	if len(resp.Data) > 0 {
		vec = resp.Data[0].Embedding
	}
	return finish(call, start, status, vec)
}

// Dimensions returns the number of dimensions for this model
func (p *OpenAIProvider) Dimensions() int {
	return openaiModelDimensions[p.model]
}

// ModelName returns the model name
func (p *OpenAIProvider) ModelName() string {
	return p.model
}

// ProviderName returns "openai"
func (p *OpenAIProvider) ProviderName() string {
	return "openai"
}
