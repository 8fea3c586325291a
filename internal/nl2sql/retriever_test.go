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
	"errors"
	"testing"

	"nl2sql-agent/internal/metadata"
	"nl2sql-agent/internal/vectorstore"
)

func TestRetrieve_DecodesInRankOrder(t *testing.T) {
	index := &fakeIndex{hits: []vectorstore.Hit{
		{Score: 0.9, Payload: tablespacePayload()},
		{Score: 0.5, Payload: map[string]interface{}{"table_name": "DBA_DATA_FILES"}},
		{Score: 0.1, Payload: map[string]interface{}{}},
	}}
	embedder := &fakeEmbedder{}
	r := NewRetriever(embedder, index, "", 0)

	tables, err := r.Retrieve(context.Background(), "total storage used by schema FIN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if index.collection != vectorstore.DefaultCollection {
		t.Errorf("expected default collection, got %q", index.collection)
	}
	if index.limit != DefaultLimit {
		t.Errorf("expected limit %d, got %d", DefaultLimit, index.limit)
	}
	if len(index.vector) != 3 || index.vector[0] != 0.5 {
		t.Errorf("unexpected query vector %v", index.vector)
	}
	if len(embedder.texts) != 1 || embedder.texts[0] != "total storage used by schema FIN" {
		t.Errorf("unexpected embedded text %v", embedder.texts)
	}

	if len(tables) != 3 {
		t.Fatalf("expected 3 tables, got %d", len(tables))
	}
	if tables[0].QualifiedName() != "FIN.TABLESPACE_USAGE" {
		t.Errorf("unexpected first table %q", tables[0].QualifiedName())
	}
	if tables[1].Owner() != metadata.UnknownOwner {
		t.Errorf("expected unknown owner, got %q", tables[1].Owner())
	}
	if tables[2].TableName != metadata.UnknownTable {
		t.Errorf("expected unknown table, got %q", tables[2].TableName)
	}
}

func TestRetrieve_NoHits(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{}, &fakeIndex{}, "Master_Metadata", 5)

	tables, err := r.Retrieve(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("expected no tables, got %d", len(tables))
	}
}

func TestRetrieve_CapsAtLimit(t *testing.T) {
	hits := make([]vectorstore.Hit, 4)
	for i := range hits {
		hits[i] = vectorstore.Hit{Payload: map[string]interface{}{"table_name": "T"}}
	}
	r := NewRetriever(&fakeEmbedder{}, &fakeIndex{hits: hits}, "c", 2)

	tables, err := r.Retrieve(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tables) != 2 {
		t.Errorf("expected 2 tables, got %d", len(tables))
	}
}

func TestRetrieve_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name     string
		embedder *fakeEmbedder
		index    *fakeIndex
		stage    string
	}{
		{"embedding", &fakeEmbedder{err: errors.New("model offline")}, &fakeIndex{}, "embedding"},
		{"search", &fakeEmbedder{}, &fakeIndex{err: errors.New("connection refused")}, "vector search"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRetriever(tt.embedder, tt.index, "", 0)
			tables, err := r.Retrieve(context.Background(), "q")
			if err == nil {
				t.Fatal("expected error")
			}
			if tables != nil {
				t.Errorf("expected nil tables on error, got %v", tables)
			}
			var upErr *UpstreamError
			if !errors.As(err, &upErr) || upErr.Stage != tt.stage {
				t.Errorf("expected upstream error at %q, got %v", tt.stage, err)
			}
		})
	}
}
