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
	"strings"

	"nl2sql-agent/internal/llm"
	"nl2sql-agent/internal/metadata"
)

// NoMetadataSentinel is returned by Synthesize instead of calling the model
// when there is no metadata to ground the query in
const NoMetadataSentinel = "No metadata found to generate the SQL query."

// sqlRules is the fixed instruction block that precedes the metadata
const sqlRules = `You are an expert Oracle SQL query generator.
Generate precise Oracle SQL queries ONLY using the provided metadata of tables, columns, and their relationships.
- If no metadata is provided, respond with: "` + NoMetadataSentinel + `"
- Do not assume or invent tables or columns that are not explicitly described in the metadata.
- Use standard Oracle SQL syntax.
- Use fully qualified table names (owner.table_name) when the owner information is available.
- Join tables based on their defined relationships to include requested fields.
- Ensure to include all necessary conditions and filters relevant to the user query.
- Optimize the query for performance.
- If calculating size or usage, convert sizes from BYTES to GIGABYTES (GB) by dividing BYTES by 1024 * 1024 * 1024.
- Prioritize tables and columns mentioned in the user query if available.
- Use the provided status mappings for decoding PHASE_CODE and other relevant columns.
- Return a single SQL statement in a ` + "```sql" + ` code block.`

// Synthesizer drafts SQL for a question from formatted metadata
type Synthesizer struct {
	completer   llm.Completer
	temperature float64
	maxTokens   int
}

// NewSynthesizer creates a Synthesizer. A negative temperature or
// non-positive maxTokens selects the defaults.
func NewSynthesizer(completer llm.Completer, temperature float64, maxTokens int) *Synthesizer {
	if temperature < 0 {
		temperature = llm.DefaultTemperature
	}
	if maxTokens <= 0 {
		maxTokens = llm.DefaultMaxTokens
	}
	return &Synthesizer{
		completer:   completer,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// SystemPrompt builds the system message for formatted metadata. The
// prompt is assembled by concatenation, so the brace escaping applied by
// the formatter is reversed and the model sees the metadata as stored.
func SystemPrompt(metadataText string) string {
	var sb strings.Builder
	sb.WriteString(sqlRules)
	sb.WriteString("\n\nAvailable Tables, Columns, Relationships, and Business Logic:\n")
	sb.WriteString(metadata.UnescapeBraces(metadataText))
	return sb.String()
}

// Synthesize returns the raw model output for question. Empty metadata
// returns NoMetadataSentinel without calling the model. Completion errors
// are returned as *UpstreamError and are not retried.
func (s *Synthesizer) Synthesize(ctx context.Context, question, metadataText string) (string, error) {
	if strings.TrimSpace(metadataText) == "" {
		return NoMetadataSentinel, nil
	}

	out, err := s.completer.Complete(ctx, llm.CompletionRequest{
		System:      SystemPrompt(metadataText),
		User:        question,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return "", upstream("completion", err)
	}
	return out, nil
}
