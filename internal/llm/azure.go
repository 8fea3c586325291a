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
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// AzureDefaultAPIVersion is used when no API version is configured
const AzureDefaultAPIVersion = "2024-08-01-preview"

// NewAzureClient creates a completion client for an Azure OpenAI
// deployment. Requests go to
// {endpoint}/openai/deployments/{deployment}/chat/completions.
func NewAzureClient(endpoint, apiKey, deployment, apiVersion string) (*OpenAIClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("Azure OpenAI endpoint cannot be empty")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Azure OpenAI API key cannot be empty")
	}
	if deployment == "" {
		return nil, fmt.Errorf("Azure OpenAI deployment name cannot be empty")
	}
	if apiVersion == "" {
		apiVersion = AzureDefaultAPIVersion
	}

	u := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(endpoint, "/"), url.PathEscape(deployment), url.QueryEscape(apiVersion))

	LogProviderInit("azure", deployment, u, apiKey)

	return &OpenAIClient{
		provider: "azure",
		model:    deployment,
		url:      u,
		headers:  map[string]string{"api-key": apiKey},
		client:   &http.Client{Timeout: HTTPTimeout},
	}, nil
}
