/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package vectorstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteIndex stores metadata vectors in a local SQLite file and ranks
// them by cosine similarity in process
type SQLiteIndex struct {
	db *sql.DB
}

// OpenSQLite opens or creates the index database at path
func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite index path cannot be empty")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	idx := &SQLiteIndex{db: db}
	if err := idx.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return idx, nil
}

// Close closes the database
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

func (s *SQLiteIndex) createSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS collections (
        name TEXT PRIMARY KEY,
        dimensions INTEGER NOT NULL
    );

    CREATE TABLE IF NOT EXISTS metadata_vectors (
        collection TEXT NOT NULL,
        id INTEGER NOT NULL,
        payload TEXT NOT NULL,
        embedding BLOB NOT NULL,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

        PRIMARY KEY (collection, id)
    );

    CREATE INDEX IF NOT EXISTS idx_vectors_collection ON metadata_vectors(collection);
    `

	_, err := s.db.Exec(schema)
	return err
}

// EnsureCollection records the collection and its vector size. An existing
// collection with a different size is an error.
func (s *SQLiteIndex) EnsureCollection(ctx context.Context, collection string, dimensions int) error {
	var existing int
	err := s.db.QueryRowContext(ctx,
		"SELECT dimensions FROM collections WHERE name = ?", collection).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		_, err = s.db.ExecContext(ctx,
			"INSERT INTO collections (name, dimensions) VALUES (?, ?)", collection, dimensions)
		if err != nil {
			return fmt.Errorf("failed to create collection %s: %w", collection, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to look up collection %s: %w", collection, err)
	case existing != dimensions:
		return fmt.Errorf("collection %s has %d dimensions, not %d", collection, existing, dimensions)
	}
	return nil
}

// Upsert writes records into the collection, replacing records with the
// same ID
func (s *SQLiteIndex) Upsert(ctx context.Context, collection string, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT OR REPLACE INTO metadata_vectors (collection, id, payload, embedding)
        VALUES (?, ?, ?, ?)
    `)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		payload, err := json.Marshal(rec.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode payload for record %d: %w", rec.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, collection, int64(rec.ID), string(payload), serializeEmbedding(rec.Vector)); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Search returns up to limit records from collection ranked by cosine
// similarity to vector. Ties keep insertion order.
func (s *SQLiteIndex) Search(ctx context.Context, collection string, vector []float32, limit int) ([]Hit, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT payload, embedding FROM metadata_vectors WHERE collection = ? ORDER BY rowid", collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var payloadText string
		var blob []byte
		if err := rows.Scan(&payloadText, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		var payload map[string]interface{}
		if err := json.Unmarshal([]byte(payloadText), &payload); err != nil {
			return nil, fmt.Errorf("failed to decode payload: %w", err)
		}

		hits = append(hits, Hit{
			Score:   cosineSimilarity(vector, deserializeEmbedding(blob)),
			Payload: payload,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if limit >= 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// serializeEmbedding converts a float32 slice to bytes
func serializeEmbedding(embedding []float32) []byte {
	buf := make([]byte, len(embedding)*4)
	for i, v := range embedding {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// deserializeEmbedding converts bytes to a float32 slice
func deserializeEmbedding(data []byte) []float32 {
	embedding := make([]float32, len(data)/4)
	for i := range embedding {
		embedding[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return embedding
}
