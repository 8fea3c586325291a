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
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
		ok    bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{" warn ", LevelWarn, true},
		{"warning", LevelWarn, true},
		{"error", LevelError, true},
		{"", LevelError, false},
		{"verbose", LevelError, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLevel(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func captureLogs(t *testing.T, level LogLevel) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	originalLevel := GetLevel()
	SetLevel(level)
	SetOutput(&buf)
	t.Cleanup(func() {
		SetLevel(originalLevel)
		SetOutput(nil)
	})
	return &buf
}

func TestLogOutput(t *testing.T) {
	buf := captureLogs(t, LevelDebug)

	Info("pipeline finished", "outcome", "success", "tables", 2)

	var entry logEntry
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v (%q)", err, buf.String())
	}
	if entry.Level != "INFO" {
		t.Errorf("expected level INFO, got %s", entry.Level)
	}
	if entry.Message != "pipeline finished" {
		t.Errorf("unexpected message %q", entry.Message)
	}
	if entry.Fields["outcome"] != "success" {
		t.Errorf("expected outcome field, got %v", entry.Fields)
	}
	// JSON numbers decode as float64
	if entry.Fields["tables"] != float64(2) {
		t.Errorf("expected tables=2, got %v", entry.Fields["tables"])
	}
}

func TestLogLevelFiltering(t *testing.T) {
	buf := captureLogs(t, LevelWarn)

	Debug("hidden")
	Info("hidden")
	Warn("shown")
	Error("shown too")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %q", len(lines), buf.String())
	}
}

func TestErrorFieldsAreStrings(t *testing.T) {
	buf := captureLogs(t, LevelDebug)

	Error("upstream failed", "error", errors.New("connection refused"))

	if !strings.Contains(buf.String(), `"error":"connection refused"`) {
		t.Errorf("expected error message in output, got %q", buf.String())
	}
}

func TestOddKeyvalsIgnored(t *testing.T) {
	buf := captureLogs(t, LevelDebug)

	Info("dangling", "key")

	var entry logEntry
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(entry.Fields) != 0 {
		t.Errorf("expected no fields, got %v", entry.Fields)
	}
}
