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

// OpenAIDefaultBaseURL is the public OpenAI API endpoint
const OpenAIDefaultBaseURL = "https://api.openai.com/v1"

// OpenAIClient implements Completer for the OpenAI chat completions API and
// compatible servers
type OpenAIClient struct {
	provider string
	model    string
	url      string
	headers  map[string]string
	client   *http.Client
}

type openaiRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(apiKey, model, baseURL string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key cannot be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("OpenAI model cannot be empty")
	}
	if baseURL == "" {
		baseURL = OpenAIDefaultBaseURL
	}
	url := strings.TrimRight(baseURL, "/") + "/chat/completions"

	LogProviderInit("openai", model, url, apiKey)

	return &OpenAIClient{
		provider: "openai",
		model:    model,
		url:      url,
		headers:  map[string]string{"Authorization": "Bearer " + apiKey},
		client:   &http.Client{Timeout: HTTPTimeout},
	}, nil
}

// Complete sends the request and returns the first choice's content
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	req = withDefaults(req)
	start := time.Now()

	LogLLMCallDetails(c.provider, c.model, c.url, len(req.System), len(req.User))
	LogLLMRequestTrace(c.provider, c.model, req.User)

	body := openaiRequest{
		Messages:    chatMessages(req),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	// Azure selects the model through the deployment in the URL
	if c.provider == "openai" {
		body.Model = c.model
	}

	var resp openaiResponse
	status, err := postJSON(ctx, c.client, c.url, c.headers, body, &resp)
	if err != nil {
		LogLLMCall(c.provider, c.model, 0, 0, time.Since(start), err)
		return "", err
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices in response")
		LogLLMCall(c.provider, c.model, 0, 0, time.Since(start), err)
		return "", err
	}

	LogLLMResponseTrace(c.provider, c.model, status, resp.Choices[0].FinishReason)
	LogLLMCall(c.provider, c.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, time.Since(start), nil)
	return resp.Choices[0].Message.Content, nil
}
