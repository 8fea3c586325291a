/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package database

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Codes for failures raised by the agent rather than the database
const (
	CodeReadOnly        = "READ_ONLY"
	CodeTimeout         = "TIMEOUT"
	CodeUnknownDatabase = "UNKNOWN_DATABASE"
	CodeConnection      = "CONNECTION"
)

// ExecutionError describes a failed statement: the database error code
// (ORA-NNNNN for Oracle, the SQLSTATE for Postgres, or one of the Code
// constants) and its message
type ExecutionError struct {
	Database string
	Code     string
	Message  string
	Err      error
}

func (e *ExecutionError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

var oraErrorPattern = regexp.MustCompile(`(ORA-\d{5}):\s*([^\n]*)`)

// classifyError converts a driver error into an *ExecutionError
func classifyError(database string, err error) *ExecutionError {
	if err == nil {
		return nil
	}

	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr
	}

	out := &ExecutionError{Database: database, Err: err}

	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		out.Code = CodeTimeout
		out.Message = "statement timed out"
	case errors.As(err, &pgErr):
		out.Code = pgErr.Code
		out.Message = pgErr.Message
	default:
		if m := oraErrorPattern.FindStringSubmatch(err.Error()); m != nil {
			out.Code = m[1]
			out.Message = strings.TrimSpace(m[2])
		} else {
			out.Message = err.Error()
		}
	}
	return out
}
