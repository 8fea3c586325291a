/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package nl2sql turns a natural-language question into a single SQL
// statement by retrieving table metadata, prompting a language model and
// extracting the statement from its reply.
package nl2sql

import (
	"context"
	"fmt"
	"time"

	"nl2sql-agent/internal/logging"
	"nl2sql-agent/internal/metadata"
	"nl2sql-agent/internal/metrics"
)

// Pipeline sequences retrieval, formatting, synthesis and extraction. It
// holds only read-only handles and is safe for concurrent use.
type Pipeline struct {
	retriever   *Retriever
	synthesizer *Synthesizer
}

// NewPipeline creates a Pipeline
func NewPipeline(retriever *Retriever, synthesizer *Synthesizer) *Pipeline {
	return &Pipeline{retriever: retriever, synthesizer: synthesizer}
}

// Generate produces SQL for question. Every failure, including a panic in
// a collaborator, is reported through the returned Outcome.
func (p *Pipeline) Generate(ctx context.Context, question string) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = Failure(ReasonUpstreamError, upstream("pipeline", fmt.Errorf("panic: %v", r)))
		}
		metrics.ObserveOutcome(outcome.Reason.String())
		if outcome.Reason == ReasonUpstreamError {
			logging.Error("generation_failed", logging.WithContext(ctx,
				"reason", outcome.Reason.String(), "error", outcome.Err)...)
		} else {
			logging.Info("generation_finished", logging.WithContext(ctx,
				"reason", outcome.Reason.String(), "sql", outcome.SQL)...)
		}
	}()

	start := time.Now()
	tables, err := p.retriever.Retrieve(ctx, question)
	metrics.ObserveStage(metrics.StageRetrieve, time.Since(start))
	if err != nil {
		return Failure(ReasonUpstreamError, err)
	}
	metrics.ObserveRetrieved(len(tables))
	if len(tables) == 0 {
		return Failure(ReasonNoMetadata, nil)
	}

	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.QualifiedName())
	}
	logging.Debug("metadata_retrieved", logging.WithContext(ctx, "tables", names)...)

	start = time.Now()
	raw, err := p.synthesizer.Synthesize(ctx, question, metadata.Format(tables))
	metrics.ObserveStage(metrics.StageSynthesize, time.Since(start))
	if err != nil {
		return Failure(ReasonUpstreamError, err)
	}
	logging.Debug("model_output", logging.WithContext(ctx, "raw", raw)...)

	sql, ok := ExtractSQL(raw)
	if !ok {
		return Failure(ReasonExtractionFailed, nil)
	}
	return Success(sql)
}
