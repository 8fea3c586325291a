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
	"time"

	"nl2sql-agent/internal/database"
	"nl2sql-agent/internal/metrics"
)

// Executor runs a statement against a named database. An empty name
// selects the default database.
type Executor interface {
	Execute(ctx context.Context, dbName, stmt string) (*database.ExecutionResult, error)
}

// Answer is the full response to a question: the generation outcome and,
// when the statement was executed, its result or error and a summary.
type Answer struct {
	Outcome  Outcome
	Database string
	Executed bool
	Result   *database.ExecutionResult
	Err      *database.ExecutionError
	Summary  string
}

// Agent answers questions by generating SQL and optionally executing and
// summarising it
type Agent struct {
	pipeline   *Pipeline
	executor   Executor
	summarizer *Summarizer
}

// NewAgent creates an Agent. executor and summarizer may be nil, in which
// case Ask only generates SQL.
func NewAgent(pipeline *Pipeline, executor Executor, summarizer *Summarizer) *Agent {
	return &Agent{pipeline: pipeline, executor: executor, summarizer: summarizer}
}

// CanExecute reports whether the agent has an executor
func (a *Agent) CanExecute() bool {
	return a.executor != nil
}

// Generate produces SQL for question without executing it
func (a *Agent) Generate(ctx context.Context, question string) Outcome {
	return a.pipeline.Generate(ctx, question)
}

// Ask generates SQL for question and, when execute is set, runs it against
// dbName and summarises the rows
func (a *Agent) Ask(ctx context.Context, question, dbName string, execute bool) Answer {
	answer := Answer{Outcome: a.pipeline.Generate(ctx, question), Database: dbName}
	if !answer.Outcome.OK() || !execute || a.executor == nil {
		return answer
	}

	answer.Executed = true
	start := time.Now()
	result, err := a.executor.Execute(ctx, dbName, answer.Outcome.SQL)
	metrics.ObserveStage(metrics.StageExecute, time.Since(start))
	if err != nil {
		var execErr *database.ExecutionError
		if !errors.As(err, &execErr) {
			execErr = &database.ExecutionError{
				Database: dbName,
				Code:     database.CodeConnection,
				Message:  err.Error(),
				Err:      err,
			}
		}
		answer.Err = execErr
		return answer
	}
	answer.Result = result

	answer.Summary = RowCountMessage(result.RowCount())
	if a.summarizer != nil {
		start = time.Now()
		if summary, ok := a.summarizer.Summarize(ctx, answer.Outcome.SQL, result.Columns, result.Rows); ok {
			answer.Summary = summary
		}
		metrics.ObserveStage(metrics.StageSummarize, time.Since(start))
	}
	return answer
}
