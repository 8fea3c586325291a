/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent - Structured Logging
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// EnvLogLevel is the environment variable controlling the log level
const EnvLogLevel = "NL2SQL_LOG_LEVEL"

var (
	mu sync.RWMutex

	// Default to ERROR so one-shot CLI output stays clean
	currentLevel = LevelError

	out io.Writer = os.Stderr
)

func init() {
	if level, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		currentLevel = level
	}
}

// ParseLevel converts a level name into a LogLevel. The second return value
// is false when the name is not recognised.
func ParseLevel(name string) (LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	}
	return LevelError, false
}

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

type logEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

func emit(level LogLevel, message string, keyvals ...interface{}) {
	mu.RLock()
	enabled := level >= currentLevel
	w := out
	mu.RUnlock()
	if !enabled {
		return
	}

	entry := logEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level.String(),
		Message:   message,
	}

	if len(keyvals) > 0 {
		entry.Fields = make(map[string]interface{}, len(keyvals)/2)
		for i := 0; i+1 < len(keyvals); i += 2 {
			key := fmt.Sprintf("%v", keyvals[i])
			val := keyvals[i+1]
			// error values marshal to {} otherwise
			if err, ok := val.(error); ok && err != nil {
				val = err.Error()
			}
			entry.Fields[key] = val
		}
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to marshal log entry: %v\n", err)
		return
	}

	fmt.Fprintln(w, string(jsonBytes))
}

// Debug logs a debug-level message with structured fields
func Debug(message string, keyvals ...interface{}) {
	emit(LevelDebug, message, keyvals...)
}

// Info logs an info-level message with structured fields
func Info(message string, keyvals ...interface{}) {
	emit(LevelInfo, message, keyvals...)
}

// Warn logs a warning-level message with structured fields
func Warn(message string, keyvals ...interface{}) {
	emit(LevelWarn, message, keyvals...)
}

// Error logs an error-level message with structured fields
func Error(message string, keyvals ...interface{}) {
	emit(LevelError, message, keyvals...)
}

// SetLevel sets the minimum log level to output
func SetLevel(level LogLevel) {
	mu.Lock()
	currentLevel = level
	mu.Unlock()
}

// GetLevel returns the current minimum log level
func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// SetOutput redirects log output. Passing nil restores stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	out = w
}
