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
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// DefaultQdrantPort is the Qdrant gRPC port
const DefaultQdrantPort = 6334

// qdrantClient is the subset of *qdrant.Client used by QdrantIndex
type qdrantClient interface {
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Close() error
}

// QdrantIndex searches a Qdrant collection over gRPC
type QdrantIndex struct {
	client qdrantClient
}

// NewQdrant connects to the Qdrant server described by cfg
func NewQdrant(cfg Config) (*QdrantIndex, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultQdrantPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client for %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return &QdrantIndex{client: client}, nil
}

// Close closes the underlying connection
func (q *QdrantIndex) Close() error {
	return q.client.Close()
}

// Search returns the payloads of the nearest points in collection
func (q *QdrantIndex) Search(ctx context.Context, collection string, vector []float32, limit int) ([]Hit, error) {
	if limit <= 0 {
		return nil, nil
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query on %s failed: %w", collection, err)
	}

	hits := make([]Hit, 0, len(points))
	for _, p := range points {
		hits = append(hits, Hit{
			Score:   float64(p.GetScore()),
			Payload: fromQdrantMap(p.GetPayload()),
		})
	}
	return hits, nil
}

// EnsureCollection creates collection with cosine distance when missing
func (q *QdrantIndex) EnsureCollection(ctx context.Context, collection string, dimensions int) error {
	exists, err := q.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", collection, err)
	}
	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", collection, err)
	}
	return nil
}

// Upsert writes records to collection and waits for them to be indexed
func (q *QdrantIndex) Upsert(ctx context.Context, collection string, records []Record) error {
	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, rec := range records {
		payload, err := toQdrantMap(rec.Payload)
		if err != nil {
			return fmt.Errorf("record %d: %w", rec.ID, err)
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(rec.ID),
			Vectors: qdrant.NewVectors(rec.Vector...),
			Payload: payload,
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert on %s failed: %w", collection, err)
	}
	return nil
}

func fromQdrantMap(m map[string]*qdrant.Value) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = fromQdrantValue(v)
	}
	return out
}

func fromQdrantValue(v *qdrant.Value) interface{} {
	if v == nil {
		return nil
	}
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_ListValue:
		values := kind.ListValue.GetValues()
		list := make([]interface{}, 0, len(values))
		for _, item := range values {
			list = append(list, fromQdrantValue(item))
		}
		return list
	case *qdrant.Value_StructValue:
		return fromQdrantMap(kind.StructValue.GetFields())
	default:
		return nil
	}
}

func toQdrantMap(m map[string]interface{}) (map[string]*qdrant.Value, error) {
	out := make(map[string]*qdrant.Value, len(m))
	for k, v := range m {
		val, err := toQdrantValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		out[k] = val
	}
	return out, nil
}

func toQdrantValue(v interface{}) (*qdrant.Value, error) {
	switch val := v.(type) {
	case nil:
		return &qdrant.Value{Kind: &qdrant.Value_NullValue{}}, nil
	case string:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: val}}, nil
	case bool:
		return &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: val}}, nil
	case int:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(val)}}, nil
	case int64:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: val}}, nil
	case float64:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: val}}, nil
	case []string:
		list := make([]*qdrant.Value, 0, len(val))
		for _, s := range val {
			list = append(list, &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}})
		}
		return &qdrant.Value{Kind: &qdrant.Value_ListValue{ListValue: &qdrant.ListValue{Values: list}}}, nil
	case []interface{}:
		list := make([]*qdrant.Value, 0, len(val))
		for _, item := range val {
			conv, err := toQdrantValue(item)
			if err != nil {
				return nil, err
			}
			list = append(list, conv)
		}
		return &qdrant.Value{Kind: &qdrant.Value_ListValue{ListValue: &qdrant.ListValue{Values: list}}}, nil
	case map[string]interface{}:
		fields, err := toQdrantMap(val)
		if err != nil {
			return nil, err
		}
		return &qdrant.Value{Kind: &qdrant.Value_StructValue{StructValue: &qdrant.Struct{Fields: fields}}}, nil
	default:
		return nil, fmt.Errorf("unsupported payload value type %T", v)
	}
}
