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
	"fmt"
	"sort"
	"strings"
	"time"

	"nl2sql-agent/internal/logging"
)

var tracer = logging.NewTracer("[LLM] ")

// SetLogLevel sets the embedding trace level
func SetLogLevel(level logging.TraceLevel) {
	tracer.SetLevel(level)
}

// GetLogLevel returns the current embedding trace level
func GetLogLevel() logging.TraceLevel {
	return tracer.Level()
}

// LogAPICall logs an embedding API call with timing
func LogAPICall(provider, model string, textLen int, duration time.Duration, dimensions int, err error) {
	if err != nil {
		tracer.Info("API call failed: provider=%s, model=%s, text_length=%d, duration=%s, error=%v",
			provider, model, textLen, duration, err)
	} else {
		tracer.Info("API call succeeded: provider=%s, model=%s, text_length=%d, dimensions=%d, duration=%s",
			provider, model, textLen, dimensions, duration)
	}
}

// LogAPICallDetails logs detailed information about an API call
func LogAPICallDetails(provider, model, url string, textLen int) {
	tracer.Debug("Starting API call: provider=%s, model=%s, url=%s, text_length=%d",
		provider, model, url, textLen)
}

// LogRequestTrace logs trace-level request information
func LogRequestTrace(provider, model string, textPreview string) {
	tracer.Trace("Request details: provider=%s, model=%s, text_preview=%s",
		provider, model, logging.Preview(textPreview, 100))
}

// LogResponseTrace logs trace-level response information
func LogResponseTrace(provider, model string, statusCode int, dimensions int) {
	tracer.Trace("Response details: provider=%s, model=%s, status_code=%d, dimensions=%d",
		provider, model, statusCode, dimensions)
}

// LogRateLimitError logs rate limit errors with specific details
func LogRateLimitError(provider, model string, statusCode int, responseBody string) {
	tracer.Info("RATE LIMIT ERROR: provider=%s, model=%s, status_code=%d, response=%s",
		provider, model, statusCode, logging.Preview(responseBody, 200))
}

// LogConnectionError logs connection errors
func LogConnectionError(provider, url string, err error) {
	tracer.Info("Connection failed: provider=%s, url=%s, error=%v", provider, url, err)
}

// LogProviderInit logs provider initialization. Values under "api_key" are
// masked.
func LogProviderInit(provider, model string, config map[string]string) {
	if tracer.Level() < logging.TraceDebug {
		return
	}

	keys := make([]string, 0, len(config))
	for k := range config {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := config[k]
		if k == "api_key" {
			v = logging.MaskKey(v)
		}
		parts = append(parts, fmt.Sprintf("%s=%s", k, v))
	}
	tracer.Debug("Provider initialized: provider=%s, model=%s, config=%s",
		provider, model, strings.Join(parts, " "))
}
