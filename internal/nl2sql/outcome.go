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
	"fmt"
)

// Reason classifies a generation failure
type Reason int

const (
	// ReasonNone marks a successful outcome
	ReasonNone Reason = iota
	// ReasonNoMetadata means retrieval found no relevant tables
	ReasonNoMetadata
	// ReasonExtractionFailed means the model output held no recognisable SQL
	ReasonExtractionFailed
	// ReasonUpstreamError means the embedding, index or completion call failed
	ReasonUpstreamError
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "success"
	case ReasonNoMetadata:
		return "no_metadata"
	case ReasonExtractionFailed:
		return "extraction_failed"
	case ReasonUpstreamError:
		return "upstream_error"
	default:
		return "unknown"
	}
}

// Outcome is the result of Pipeline.Generate: either a SQL statement or a
// failure reason. Err is set only for ReasonUpstreamError.
type Outcome struct {
	SQL    string
	Reason Reason
	Err    error
}

// Success returns a successful outcome carrying sql
func Success(sql string) Outcome {
	return Outcome{SQL: sql, Reason: ReasonNone}
}

// Failure returns a failed outcome
func Failure(reason Reason, err error) Outcome {
	return Outcome{Reason: reason, Err: err}
}

// OK reports whether the outcome carries SQL
func (o Outcome) OK() bool {
	return o.Reason == ReasonNone
}

// UserMessage returns the message shown to the end user for a failed
// outcome. Upstream error details are never included.
func (o Outcome) UserMessage() string {
	switch o.Reason {
	case ReasonNone:
		return ""
	case ReasonNoMetadata:
		return "No relevant table metadata found. Try rephrasing the question or naming the tables involved."
	case ReasonExtractionFailed:
		return "Could not extract valid SQL query from response."
	case ReasonUpstreamError:
		return "The query service is temporarily unavailable. Please try again or check the connection."
	default:
		return "Unknown error."
	}
}

// UpstreamError wraps a failure from an external collaborator with the
// pipeline stage it occurred in
type UpstreamError struct {
	Stage string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func upstream(stage string, err error) error {
	return &UpstreamError{Stage: stage, Err: err}
}
