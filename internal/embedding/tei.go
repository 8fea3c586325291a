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
	// TEIHTTPTimeout is the HTTP client timeout for text-embeddings-inference
	TEIHTTPTimeout = 30 * time.Second

	// TEIDefaultModel is the model the metadata index was built with
	TEIDefaultModel = "BAAI/bge-small-en"
)

// TEIProvider implements embedding generation against a Hugging Face
// text-embeddings-inference server. The model is fixed by the server; the
// configured name is used for logging and dimension lookup.
type TEIProvider struct {
	baseURL string
	model   string
	client  *http.Client

	mu   sync.RWMutex
	dims int
}

type teiEmbedRequest struct {
	Inputs   string `json:"inputs"`
	Truncate bool   `json:"truncate"`
}

var teiModelDimensions = map[string]int{
	"BAAI/bge-small-en":      384,
	"BAAI/bge-small-en-v1.5": 384,
	"BAAI/bge-base-en-v1.5":  768,
	"BAAI/bge-large-en-v1.5": 1024,
}

// NewTEIProvider creates a new text-embeddings-inference provider
func NewTEIProvider(baseURL, model string) (*TEIProvider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("TEI base URL cannot be empty")
	}
	if model == "" {
		model = TEIDefaultModel
	}

	LogProviderInit("tei", model, map[string]string{
		"base_url": baseURL,
	})

	return &TEIProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client: &http.Client{
			Timeout: TEIHTTPTimeout,
		},
		dims: teiModelDimensions[model],
	}, nil
}

// Embed generates an embedding vector for the given text. The server is
// also asked to truncate, as a backstop for inputs whose model tokenization
// exceeds the whitespace token count.
func (p *TEIProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	start := time.Now()
	call := embedCall{
		provider: "tei",
		model:    p.model,
		url:      p.baseURL + "/embed",
		body:     teiEmbedRequest{Inputs: text, Truncate: true},
		text:     text,
	}

	var resp [][]float64
	status, err := postJSON(ctx, p.client, call, &resp)
	if err != nil {
		return nil, err
	}

	var vec []float64
	if len(resp) > 0 {
		vec = resp[0]
	}
	vec, err = finish(call, start, status, vec)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.dims = len(vec)
	p.mu.Unlock()

	return vec, nil
}

// Dimensions returns the vector length for this model
func (p *TEIProvider) Dimensions() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dims
}

// ModelName returns the model name
func (p *TEIProvider) ModelName() string {
	return p.model
}

// ProviderName returns "tei"
func (p *TEIProvider) ProviderName() string {
	return "tei"
}
