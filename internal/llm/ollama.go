/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OllamaClient implements Completer using Ollama's native chat API
type OllamaClient struct {
	baseURL string
	model   string
	client  *http.Client
}

type ollamaRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	DoneReason      string `json:"done_reason"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// NewOllamaClient creates a new Ollama client
func NewOllamaClient(baseURL, model string) (*OllamaClient, error) {
	if model == "" {
		return nil, fmt.Errorf("Ollama model cannot be empty")
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	LogProviderInit("ollama", model, baseURL, "")

	return &OllamaClient{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: HTTPTimeout},
	}, nil
}

// Complete sends a non-streaming chat request
func (c *OllamaClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	req = withDefaults(req)
	start := time.Now()
	url := c.baseURL + "/api/chat"

	LogLLMCallDetails("ollama", c.model, url, len(req.System), len(req.User))
	LogLLMRequestTrace("ollama", c.model, req.User)

	body := ollamaRequest{
		Model:    c.model,
		Messages: chatMessages(req),
		Stream:   false,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	}

	var resp ollamaResponse
	status, err := postJSON(ctx, c.client, url, nil, body, &resp)
	if err != nil {
		err = fmt.Errorf("ollama at %s: %w", c.baseURL, err)
		LogLLMCall("ollama", c.model, 0, 0, time.Since(start), err)
		return "", err
	}

	LogLLMResponseTrace("ollama", c.model, status, resp.DoneReason)
	LogLLMCall("ollama", c.model, resp.PromptEvalCount, resp.EvalCount, time.Since(start), nil)
	return resp.Message.Content, nil
}
