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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// embedCall describes one JSON embedding request
type embedCall struct {
	provider string
	model    string
	url      string
	headers  map[string]string
	body     interface{}
	text     string
}

// postJSON sends call.body to call.url and decodes the JSON response into
// out. Every outcome is traced through LogAPICall.
func postJSON(ctx context.Context, client *http.Client, call embedCall, out interface{}) (int, error) {
	startTime := time.Now()
	textLen := len(call.text)

	LogAPICallDetails(call.provider, call.model, call.url, textLen)
	LogRequestTrace(call.provider, call.model, call.text)

	fail := func(err error) (int, error) {
		LogAPICall(call.provider, call.model, textLen, time.Since(startTime), 0, err)
		return 0, err
	}

	reqBytes, err := json.Marshal(call.body)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, call.url, bytes.NewReader(reqBytes))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range call.headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		LogConnectionError(call.provider, call.url, err)
		return fail(fmt.Errorf("failed to make API request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fail(fmt.Errorf("API request failed with status %d (error reading response body: %w)", resp.StatusCode, readErr))
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			LogRateLimitError(call.provider, call.model, resp.StatusCode, string(body))
		}
		return fail(fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fail(fmt.Errorf("failed to decode response: %w", err))
	}

	return resp.StatusCode, nil
}

// finish records a successful call and returns the vector
func finish(call embedCall, start time.Time, status int, vec []float64) ([]float64, error) {
	if len(vec) == 0 {
		err := fmt.Errorf("received empty embedding from %s", call.provider)
		LogAPICall(call.provider, call.model, len(call.text), time.Since(start), 0, err)
		return nil, err
	}
	LogResponseTrace(call.provider, call.model, status, len(vec))
	LogAPICall(call.provider, call.model, len(call.text), time.Since(start), len(vec), nil)
	return vec, nil
}
