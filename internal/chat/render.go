/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package chat

import (
	"fmt"
	"strings"

	"nl2sql-agent/internal/database"
)

// DefaultDisplayRows is the number of result rows shown in the terminal
const DefaultDisplayRows = 20

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", " ")

// ResultMarkdown renders up to maxRows rows of result as a markdown table,
// with a trailing note when rows were left out
func ResultMarkdown(result *database.ExecutionResult, maxRows int) string {
	if result == nil || len(result.Columns) == 0 {
		return "_No columns returned._\n"
	}

	var sb strings.Builder

	sb.WriteString("|")
	for _, col := range result.Columns {
		sb.WriteString(" ")
		sb.WriteString(cellEscaper.Replace(col))
		sb.WriteString(" |")
	}
	sb.WriteString("\n|")
	for range result.Columns {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")

	shown := len(result.Rows)
	if maxRows >= 0 && shown > maxRows {
		shown = maxRows
	}
	for _, row := range result.Rows[:shown] {
		sb.WriteString("|")
		for _, col := range result.Columns {
			sb.WriteString(" ")
			sb.WriteString(cellEscaper.Replace(row[col]))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	switch {
	case shown < len(result.Rows):
		fmt.Fprintf(&sb, "\n_Showing %d of %d rows._\n", shown, len(result.Rows))
	case result.Truncated:
		fmt.Fprintf(&sb, "\n_Result truncated at %d rows._\n", len(result.Rows))
	}

	return sb.String()
}
