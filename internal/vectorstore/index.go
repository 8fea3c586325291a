/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package vectorstore provides similarity search over the table metadata
// collection, backed by Qdrant or a local SQLite file.
package vectorstore

import (
	"context"
	"fmt"
	"math"
)

// DefaultCollection is the collection holding table metadata records
const DefaultCollection = "Master_Metadata"

// Hit is a single similarity search result
type Hit struct {
	Score   float64
	Payload map[string]interface{}
}

// Record is a point written to the index
type Record struct {
	ID      uint64
	Vector  []float32
	Payload map[string]interface{}
}

// Index is a read-only similarity search handle. Hits are returned in
// descending score order and never exceed limit.
type Index interface {
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]Hit, error)
}

// Store is an Index that can also be written to
type Store interface {
	Index
	EnsureCollection(ctx context.Context, collection string, dimensions int) error
	Upsert(ctx context.Context, collection string, records []Record) error
	Close() error
}

// Config selects and configures the index backend
type Config struct {
	Backend string // "qdrant" or "sqlite"

	// Qdrant
	Host   string
	Port   int
	APIKey string
	UseTLS bool

	// SQLite
	Path string
}

// Open creates a Store for the configured backend
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "qdrant":
		return NewQdrant(cfg)
	case "sqlite":
		return OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported vector store backend: %s (supported: qdrant, sqlite)", cfg.Backend)
	}
}

// ToFloat32 converts an embedding to the index's vector element type
func ToFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

// cosineSimilarity calculates cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
