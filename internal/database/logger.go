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
	"os"
	"strings"
	"time"

	"nl2sql-agent/internal/logging"
)

// EnvLogLevel selects the database trace level
const EnvLogLevel = "NL2SQL_DB_LOG_LEVEL"

var tracer = newTracer()

func newTracer() *logging.Tracer {
	return logging.NewTracerTo(os.Stderr, "[DATABASE] ", logging.ParseTraceLevel(os.Getenv(EnvLogLevel)))
}

// SetLogLevel sets the database trace level
func SetLogLevel(level logging.TraceLevel) {
	tracer.SetLevel(level)
}

// GetLogLevel returns the current database trace level
func GetLogLevel() logging.TraceLevel {
	return tracer.Level()
}

// LogConnection logs a database connection attempt
func LogConnection(name, connStr string, duration time.Duration, err error) {
	sanitized := sanitizeConnStr(connStr)
	if err != nil {
		tracer.Info("Connection failed: database=%s, connection=%s, duration=%s, error=%v",
			name, sanitized, duration, err)
	} else {
		tracer.Info("Connection succeeded: database=%s, connection=%s, duration=%s",
			name, sanitized, duration)
	}
}

// LogConnectionDetails logs pool settings
func LogConnectionDetails(name string, maxConns int, idle time.Duration) {
	tracer.Debug("Connection details: database=%s, max_conns=%d, max_conn_idle_time=%s",
		name, maxConns, idle)
}

// LogQuery logs a statement execution
func LogQuery(name, query string, duration time.Duration, rowCount int, err error) {
	queryPreview := truncate(strings.TrimSpace(query), 100)
	if err != nil {
		tracer.Info("Query failed: database=%s, query=%s, duration=%s, error=%v",
			name, queryPreview, duration, err)
	} else {
		tracer.Info("Query succeeded: database=%s, query=%s, row_count=%d, duration=%s",
			name, queryPreview, rowCount, duration)
	}
}

// LogQueryTrace logs the full statement
func LogQueryTrace(name, query string) {
	tracer.Trace("Query trace: database=%s, query=%s", name, strings.TrimSpace(query))
}

// sanitizeConnStr removes the password from a URL-style connection string
func sanitizeConnStr(connStr string) string {
	schemeIdx := strings.Index(connStr, "://")
	if schemeIdx == -1 {
		return connStr
	}

	scheme := connStr[:schemeIdx+3]
	rest := connStr[schemeIdx+3:]

	// The host separator is the last @ before the path or query, so
	// passwords may contain @
	end := len(rest)
	if i := strings.IndexAny(rest, "/?"); i != -1 {
		end = i
	}
	hostSepIdx := strings.LastIndex(rest[:end], "@")
	if hostSepIdx == -1 {
		// Password containing '/' pushes the path separator left of '@'
		hostSepIdx = strings.LastIndex(rest, "@")
		if hostSepIdx == -1 {
			return connStr
		}
	}

	credentials := rest[:hostSepIdx]
	hostAndRest := rest[hostSepIdx+1:]

	colonIdx := strings.Index(credentials, ":")
	if colonIdx == -1 {
		return connStr
	}

	return scheme + credentials[:colonIdx] + ":***@" + hostAndRest
}

// truncate truncates a string to maxLen characters, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
