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
	"unicode"
)

// DefaultMaxTokens is the input ceiling of the bge-small-en family
const DefaultMaxTokens = 512

// Truncate returns the prefix of text holding at most maxTokens
// whitespace-separated tokens. Text already within the ceiling is returned
// unchanged. The cut is made at the end of the last kept token.
func Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	if TokenCount(text) <= maxTokens {
		return text
	}

	count := 0
	inToken := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			if inToken && count == maxTokens {
				return text[:i]
			}
			inToken = false
			continue
		}
		if !inToken {
			inToken = true
			count++
		}
	}
	return text
}

// TokenCount returns the number of whitespace-separated tokens in text
func TokenCount(text string) int {
	count := 0
	inToken := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			inToken = false
			continue
		}
		if !inToken {
			inToken = true
			count++
		}
	}
	return count
}

// Truncating wraps a Provider and truncates every input to a fixed token
// ceiling before embedding.
type Truncating struct {
	Provider
	maxTokens int
}

// NewTruncating wraps p with a maxTokens ceiling
func NewTruncating(p Provider, maxTokens int) *Truncating {
	return &Truncating{Provider: p, maxTokens: maxTokens}
}

// MaxTokens returns the configured ceiling
func (t *Truncating) MaxTokens() int {
	return t.maxTokens
}

// Embed truncates text and delegates to the wrapped provider
func (t *Truncating) Embed(ctx context.Context, text string) ([]float64, error) {
	if n := TokenCount(text); n > t.maxTokens {
		tracer.Debug("Truncating input: provider=%s, tokens=%d, max_tokens=%d",
			t.ProviderName(), n, t.maxTokens)
		text = Truncate(text, t.maxTokens)
	}
	return t.Provider.Embed(ctx, text)
}
