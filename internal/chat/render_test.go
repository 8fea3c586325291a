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
	"strings"
	"testing"

	"nl2sql-agent/internal/database"
)

func TestResultMarkdown(t *testing.T) {
	result := &database.ExecutionResult{
		Columns: []string{"OWNER", "NOTE"},
		Rows: []map[string]string{
			{"OWNER": "FIN", "NOTE": "a|b"},
			{"OWNER": "OPS", "NOTE": "line1\nline2"},
			{"OWNER": "HR", "NOTE": ""},
		},
	}

	got := ResultMarkdown(result, 10)
	want := "| OWNER | NOTE |\n| --- | --- |\n| FIN | a\\|b |\n| OPS | line1 line2 |\n| HR |  |\n"
	if got != want {
		t.Errorf("ResultMarkdown() =\n%q\nwant\n%q", got, want)
	}

	limited := ResultMarkdown(result, 1)
	if !strings.Contains(limited, "_Showing 1 of 3 rows._") || strings.Contains(limited, "OPS") {
		t.Errorf("unexpected limited output:\n%s", limited)
	}

	result.Truncated = true
	if out := ResultMarkdown(result, 10); !strings.Contains(out, "_Result truncated at 3 rows._") {
		t.Errorf("missing truncation note:\n%s", out)
	}
}

func TestResultMarkdown_NoColumns(t *testing.T) {
	if got := ResultMarkdown(nil, 10); got != "_No columns returned._\n" {
		t.Errorf("unexpected output %q", got)
	}
	if got := ResultMarkdown(&database.ExecutionResult{}, 10); got != "_No columns returned._\n" {
		t.Errorf("unexpected output %q", got)
	}
}
