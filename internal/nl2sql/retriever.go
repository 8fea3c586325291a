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

	"nl2sql-agent/internal/embedding"
	"nl2sql-agent/internal/metadata"
	"nl2sql-agent/internal/vectorstore"
)

// DefaultLimit is the number of tables retrieved per question
const DefaultLimit = 5

// Retriever finds the table metadata most similar to a question
type Retriever struct {
	embedder   embedding.Provider
	index      vectorstore.Index
	collection string
	limit      int
}

// NewRetriever creates a Retriever. Empty collection and non-positive limit
// select the defaults.
func NewRetriever(embedder embedding.Provider, index vectorstore.Index, collection string, limit int) *Retriever {
	if collection == "" {
		collection = vectorstore.DefaultCollection
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Retriever{
		embedder:   embedder,
		index:      index,
		collection: collection,
		limit:      limit,
	}
}

// Retrieve returns up to the configured limit of tables in rank order. No
// hits is an empty result with a nil error; embedding or search failures
// are returned as *UpstreamError.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]metadata.TableMetadata, error) {
	return r.RetrieveN(ctx, question, r.limit)
}

// RetrieveN is Retrieve with an explicit limit
func (r *Retriever) RetrieveN(ctx context.Context, question string, limit int) ([]metadata.TableMetadata, error) {
	vec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, upstream("embedding", err)
	}

	hits, err := r.index.Search(ctx, r.collection, vectorstore.ToFloat32(vec), limit)
	if err != nil {
		return nil, upstream("vector search", err)
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}

	tables := make([]metadata.TableMetadata, 0, len(hits))
	for _, h := range hits {
		tables = append(tables, metadata.FromPayload(h.Payload))
	}
	return tables, nil
}
