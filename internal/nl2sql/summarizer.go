/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package nl2sql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"nl2sql-agent/internal/llm"
	"nl2sql-agent/internal/logging"
	"nl2sql-agent/internal/metrics"
	"nl2sql-agent/internal/tsv"
)

// SampleRows is the number of result rows shown to the model
const SampleRows = 3

// RowCountMessage is the summary used when no model summary is available
func RowCountMessage(rows int) string {
	return fmt.Sprintf("Query returned %d rows.", rows)
}

// Summarizer describes query results in one or two sentences
type Summarizer struct {
	completer   llm.Completer
	temperature float64
	maxTokens   int
}

// NewSummarizer creates a Summarizer using the given generation settings
func NewSummarizer(completer llm.Completer, temperature float64, maxTokens int) *Summarizer {
	if temperature < 0 {
		temperature = llm.DefaultTemperature
	}
	if maxTokens <= 0 {
		maxTokens = llm.DefaultMaxTokens
	}
	return &Summarizer{completer: completer, temperature: temperature, maxTokens: maxTokens}
}

// Summarize returns a short description of rows. The second return value is
// false when there are no rows to describe; callers then use
// RowCountMessage. A completion failure never surfaces as an error and
// yields RowCountMessage(len(rows)) instead.
func (s *Summarizer) Summarize(ctx context.Context, sql string, columns []string, rows []map[string]string) (string, bool) {
	if len(rows) == 0 {
		return "", false
	}

	var sb strings.Builder
	sb.WriteString("Query: ")
	sb.WriteString(sql)
	sb.WriteString("\nNumber of rows: ")
	sb.WriteString(strconv.Itoa(len(rows)))
	sb.WriteString("\nSample data:\n")
	sb.WriteString(tsv.FormatRows(columns, rows, SampleRows))

	out, err := s.completer.Complete(ctx, llm.CompletionRequest{
		System:      "As a data analyst, provide a brief summary of these SQL query results. Answer in 1-2 sentences.",
		User:        sb.String(),
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err == nil {
		out = strings.TrimSpace(out)
	}
	if err != nil || out == "" {
		logging.Warn("summary_fallback", logging.WithContext(ctx, "rows", len(rows), "error", err)...)
		metrics.IncrementSummaryFallback()
		return RowCountMessage(len(rows)), true
	}
	return out, true
}
