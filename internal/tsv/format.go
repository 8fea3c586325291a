/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package tsv renders database values and result rows as tab-separated
// text, the compact form used both for result cells and for the row
// samples handed to the language model.
package tsv

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Stringify converts a scanned database value to its display string.
// NULL becomes the empty string.
func Stringify(v interface{}) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32, float64:
		return fmt.Sprintf("%v", val)
	case []interface{}, map[string]interface{}:
		jsonBytes, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(jsonBytes)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Escape replaces characters that would break TSV parsing with literal
// backslash sequences.
func Escape(s string) string {
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}

// FormatValue converts a value to a TSV-safe string.
func FormatValue(v interface{}) string {
	return Escape(Stringify(v))
}

// FormatRows renders named-column rows as TSV: a header row followed by at
// most limit data rows (all rows when limit <= 0). Columns missing from a
// row render as empty cells.
func FormatRows(columns []string, rows []map[string]string, limit int) string {
	if len(columns) == 0 {
		return ""
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	var sb strings.Builder
	sb.WriteString(BuildRow(columns...))

	values := make([]string, len(columns))
	for _, row := range rows {
		sb.WriteString("\n")
		for i, col := range columns {
			values[i] = row[col]
		}
		sb.WriteString(BuildRow(values...))
	}

	return sb.String()
}

// BuildRow creates a single TSV row from string values.
// Values are escaped for TSV safety.
func BuildRow(values ...string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = Escape(v)
	}
	return strings.Join(escaped, "\t")
}
