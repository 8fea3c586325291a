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
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		max      int
		expected string
	}{
		{"under ceiling", "show tablespace usage", 5, "show tablespace usage"},
		{"at ceiling", "a b c", 3, "a b c"},
		{"over ceiling", "a b c d", 2, "a b"},
		{"keeps inner spacing", "a  b\tc d", 3, "a  b\tc"},
		{"leading whitespace", "  a b c", 2, "  a b"},
		{"trailing whitespace", "a b   ", 2, "a b   "},
		{"zero ceiling", "a b", 0, ""},
		{"empty", "", 4, ""},
		{"over ceiling trailing whitespace", "a b c  ", 2, "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.text, tt.max); got != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.expected)
			}
		})
	}
}

func TestTokenCount(t *testing.T) {
	if n := TokenCount(" which  tablespaces\nare full "); n != 4 {
		t.Errorf("expected 4 tokens, got %d", n)
	}
	if n := TokenCount(""); n != 0 {
		t.Errorf("expected 0 tokens, got %d", n)
	}
}

type recordingProvider struct {
	inputs []string
}

func (r *recordingProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	r.inputs = append(r.inputs, text)
	return []float64{1, 0, 0}, nil
}

func (r *recordingProvider) Dimensions() int      { return 3 }
func (r *recordingProvider) ModelName() string    { return "recorder" }
func (r *recordingProvider) ProviderName() string { return "test" }

func TestTruncating_Embed(t *testing.T) {
	inner := &recordingProvider{}
	p := NewTruncating(inner, 512)

	long := strings.TrimSpace(strings.Repeat("tok ", 600))
	if _, err := p.Embed(context.Background(), long); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Embed(context.Background(), "short question"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := TokenCount(inner.inputs[0]); n != 512 {
		t.Errorf("expected 512 tokens sent, got %d", n)
	}
	if inner.inputs[1] != "short question" {
		t.Errorf("short input altered: %q", inner.inputs[1])
	}

	// Deterministic for identical input
	if _, err := p.Embed(context.Background(), long); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.inputs[0] != inner.inputs[2] {
		t.Error("truncation is not deterministic")
	}

	if p.Dimensions() != 3 || p.ProviderName() != "test" {
		t.Error("wrapper does not delegate metadata methods")
	}
}
