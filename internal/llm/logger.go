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
	"time"

	"nl2sql-agent/internal/logging"
)

var tracer = logging.NewTracer("[LLM] ")

// SetLogLevel sets the completion trace level
func SetLogLevel(level logging.TraceLevel) {
	tracer.SetLevel(level)
}

// LogLLMCall logs a completion API call with token usage and timing
func LogLLMCall(provider, model string, inputTokens, outputTokens int, duration time.Duration, err error) {
	if err != nil {
		tracer.Info("LLM call failed: provider=%s, model=%s, duration=%s, error=%v",
			provider, model, duration, err)
		return
	}
	tracer.Info("LLM call succeeded: provider=%s, model=%s, input_tokens=%d, output_tokens=%d, total_tokens=%d, duration=%s",
		provider, model, inputTokens, outputTokens, inputTokens+outputTokens, duration)
}

// LogLLMCallDetails logs detailed information about a completion call
func LogLLMCallDetails(provider, model, url string, systemLen, userLen int) {
	tracer.Debug("Starting LLM call: provider=%s, model=%s, url=%s, system_length=%d, user_length=%d",
		provider, model, url, systemLen, userLen)
}

// LogLLMRequestTrace logs trace-level request information
func LogLLMRequestTrace(provider, model, userPreview string) {
	tracer.Trace("LLM request details: provider=%s, model=%s, request_preview=%s",
		provider, model, logging.Preview(userPreview, 200))
}

// LogLLMResponseTrace logs trace-level response information
func LogLLMResponseTrace(provider, model string, statusCode int, stopReason string) {
	tracer.Trace("LLM response details: provider=%s, model=%s, status_code=%d, stop_reason=%s",
		provider, model, statusCode, stopReason)
}

// LogProviderInit logs client initialization with the API key masked
func LogProviderInit(provider, model, url, apiKey string) {
	key := "(none)"
	if apiKey != "" {
		key = logging.MaskKey(apiKey)
	}
	tracer.Debug("Provider initialized: provider=%s, model=%s, url=%s, api_key=%s",
		provider, model, url, key)
}
