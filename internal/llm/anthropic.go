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

// AnthropicDefaultBaseURL is the public Anthropic API endpoint
const AnthropicDefaultBaseURL = "https://api.anthropic.com/v1"

// AnthropicClient implements Completer for the Anthropic Messages API
type AnthropicClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// NewAnthropicClient creates a new Anthropic client
func NewAnthropicClient(apiKey, model, baseURL string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key cannot be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("Anthropic model cannot be empty")
	}
	if baseURL == "" {
		baseURL = AnthropicDefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	LogProviderInit("anthropic", model, baseURL, apiKey)

	return &AnthropicClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: HTTPTimeout},
	}, nil
}

// Complete sends the request and returns the concatenated text blocks
func (c *AnthropicClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	req = withDefaults(req)
	start := time.Now()
	url := c.baseURL + "/messages"

	LogLLMCallDetails("anthropic", c.model, url, len(req.System), len(req.User))
	LogLLMRequestTrace("anthropic", c.model, req.User)

	body := anthropicRequest{
		Model:       c.model,
		MaxTokens:   req.MaxTokens,
		System:      req.System,
		Messages:    []chatMessage{{Role: "user", Content: req.User}},
		Temperature: req.Temperature,
	}
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": "2023-06-01",
	}

	var resp anthropicResponse
	status, err := postJSON(ctx, c.client, url, headers, body, &resp)
	if err != nil {
		LogLLMCall("anthropic", c.model, 0, 0, time.Since(start), err)
		return "", err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		err := fmt.Errorf("no text content in response")
		LogLLMCall("anthropic", c.model, 0, 0, time.Since(start), err)
		return "", err
	}

	LogLLMResponseTrace("anthropic", c.model, status, resp.StopReason)
	LogLLMCall("anthropic", c.model, resp.Usage.InputTokens, resp.Usage.OutputTokens, time.Since(start), nil)
	return sb.String(), nil
}
