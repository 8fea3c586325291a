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
	"sync"

	"nl2sql-agent/internal/llm"
	"nl2sql-agent/internal/vectorstore"
)

type fakeEmbedder struct {
	err   error
	texts []string
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float64{0.5, 0.25, 0.125}, nil
}

func (f *fakeEmbedder) Dimensions() int      { return 3 }
func (f *fakeEmbedder) ModelName() string    { return "fake" }
func (f *fakeEmbedder) ProviderName() string { return "fake" }

type fakeIndex struct {
	hits []vectorstore.Hit
	err  error

	collection string
	limit      int
	vector     []float32
}

func (f *fakeIndex) Search(ctx context.Context, collection string, vector []float32, limit int) ([]vectorstore.Hit, error) {
	f.collection = collection
	f.limit = limit
	f.vector = vector
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

type fakeCompleter struct {
	mu       sync.Mutex
	reply    string
	err      error
	panics   bool
	requests []llm.CompletionRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.panics {
		panic("completer exploded")
	}
	return f.reply, f.err
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func tablespacePayload() map[string]interface{} {
	return map[string]interface{}{
		"table_name":  "TABLESPACE_USAGE",
		"table_owner": []interface{}{"FIN"},
		"columns": []interface{}{
			map[string]interface{}{"column_name": "OWNER", "data_type": "VARCHAR2", "description": "Schema owning the segment"},
			map[string]interface{}{"column_name": "TABLESPACE_NAME", "data_type": "VARCHAR2", "description": "Tablespace name"},
			map[string]interface{}{"column_name": "BYTES", "data_type": "NUMBER", "description": "Space used in bytes"},
		},
		"relationships": []interface{}{},
		"business_logic": map[string]interface{}{
			"size": "Report sizes in GB",
		},
	}
}
