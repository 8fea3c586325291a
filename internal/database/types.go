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

// Supported drivers
const (
	DriverOracle   = "oracle"
	DriverPostgres = "postgres"
)

// ExecutionResult holds the rows returned by a statement. Values are
// rendered to strings; NULL is the empty string.
type ExecutionResult struct {
	Columns   []string
	Rows      []map[string]string
	Truncated bool // More rows were available than the row cap
}

// RowCount returns the number of rows held
func (r *ExecutionResult) RowCount() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}
