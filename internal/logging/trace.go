/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package logging

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// TraceLevel represents the verbosity of provider call tracing
type TraceLevel int

const (
	// TraceNone disables all provider tracing
	TraceNone TraceLevel = iota
	// TraceInfo logs API calls, errors and token usage
	TraceInfo
	// TraceDebug adds text lengths, dimensions, timing and models
	TraceDebug
	// TraceTrace adds request and response previews
	TraceTrace
)

// EnvTraceLevel is the environment variable controlling provider tracing
const EnvTraceLevel = "NL2SQL_LLM_LOG_LEVEL"

// ParseTraceLevel converts a level name into a TraceLevel. Unknown and empty
// names map to TraceNone.
func ParseTraceLevel(name string) TraceLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "info":
		return TraceInfo
	case "debug":
		return TraceDebug
	case "trace":
		return TraceTrace
	default:
		return TraceNone
	}
}

// Tracer writes printf-style provider call logs with a fixed prefix
type Tracer struct {
	mu     sync.RWMutex
	level  TraceLevel
	logger *log.Logger
}

// NewTracer creates a tracer whose level is read from NL2SQL_LLM_LOG_LEVEL
func NewTracer(prefix string) *Tracer {
	return &Tracer{
		level:  ParseTraceLevel(os.Getenv(EnvTraceLevel)),
		logger: log.New(os.Stderr, prefix, log.LstdFlags),
	}
}

// NewTracerTo creates a tracer with an explicit level and destination
func NewTracerTo(w io.Writer, prefix string, level TraceLevel) *Tracer {
	return &Tracer{
		level:  level,
		logger: log.New(w, prefix, 0),
	}
}

// SetLevel changes the tracer level
func (t *Tracer) SetLevel(level TraceLevel) {
	t.mu.Lock()
	t.level = level
	t.mu.Unlock()
}

// Level returns the current tracer level
func (t *Tracer) Level() TraceLevel {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.level
}

// Info logs an informational message
func (t *Tracer) Info(format string, args ...interface{}) {
	if t.Level() >= TraceInfo {
		t.logger.Printf("[INFO] "+format, args...)
	}
}

// Debug logs a debug message
func (t *Tracer) Debug(format string, args ...interface{}) {
	if t.Level() >= TraceDebug {
		t.logger.Printf("[DEBUG] "+format, args...)
	}
}

// Trace logs a trace message
func (t *Tracer) Trace(format string, args ...interface{}) {
	if t.Level() >= TraceTrace {
		t.logger.Printf("[TRACE] "+format, args...)
	}
}

// MaskKey returns a redacted form of an API key showing only its ends
func MaskKey(key string) string {
	if len(key) > 8 {
		return key[:4] + "..." + key[len(key)-4:]
	}
	return "(redacted)"
}

// Preview truncates s to maxLen bytes, adding "..." if truncated
func Preview(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
