/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package metadata

import (
	"regexp"
	"strings"
	"testing"
)

func tablespaceUsage() TableMetadata {
	return TableMetadata{
		TableName:  "TABLESPACE_USAGE",
		TableOwner: []string{"FIN"},
		Columns: []ColumnMetadata{
			{ColumnName: "TABLESPACE_NAME", DataType: "VARCHAR2", Description: "Name of the tablespace"},
			{ColumnName: "BYTES", DataType: "NUMBER", Description: "Allocated size in bytes"},
		},
		Relationships: []RelationshipMetadata{
			{
				RelatedTable: "DBA_DATA_FILES",
				OnConditions: []string{"TABLESPACE_USAGE.TABLESPACE_NAME = DBA_DATA_FILES.TABLESPACE_NAME", "DBA_DATA_FILES.STATUS = 'AVAILABLE'"},
			},
		},
		BusinessLogic: map[string]string{
			"size_unit": "BYTES, convert to GB",
			"owner":     "schema that owns the segment",
		},
	}
}

func TestFormat_SingleTable(t *testing.T) {
	got := Format([]TableMetadata{tablespaceUsage()})

	expected := strings.Join([]string{
		"Table: FIN.TABLESPACE_USAGE",
		"Columns:",
		"TABLESPACE_NAME (VARCHAR2): Name of the tablespace",
		"BYTES (NUMBER): Allocated size in bytes",
		"Relationships:",
		"Related Table: DBA_DATA_FILES, Conditions: TABLESPACE_USAGE.TABLESPACE_NAME = DBA_DATA_FILES.TABLESPACE_NAME AND DBA_DATA_FILES.STATUS = 'AVAILABLE'",
		"Business Logic:",
		"owner: schema that owns the segment",
		"size_unit: BYTES, convert to GB",
	}, "\n")

	if got != expected {
		t.Errorf("Format() mismatch\n got: %q\nwant: %q", got, expected)
	}
}

func TestFormat_Empty(t *testing.T) {
	if got := Format(nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty", got)
	}
	if got := Format([]TableMetadata{}); got != "" {
		t.Errorf("Format(empty) = %q, want empty", got)
	}
}

func TestFormat_OwnerQualification(t *testing.T) {
	tests := []struct {
		name   string
		owners []string
		want   string
	}{
		{"known owner", []string{"HR", "ALT"}, "Table: HR.EMPLOYEES"},
		{"sentinel owner", []string{UnknownOwner}, "Table: EMPLOYEES"},
		{"no owner", nil, "Table: EMPLOYEES"},
		{"empty owner", []string{""}, "Table: EMPLOYEES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Format([]TableMetadata{{TableName: "EMPLOYEES", TableOwner: tt.owners}})
			firstLine := strings.SplitN(out, "\n", 2)[0]
			if firstLine != tt.want {
				t.Errorf("first line = %q, want %q", firstLine, tt.want)
			}
		})
	}
}

func TestFormat_BlocksInRankOrder(t *testing.T) {
	out := Format([]TableMetadata{
		{TableName: "FIRST"},
		{TableName: "SECOND"},
	})

	blocks := strings.Split(out, "\n\n")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d: %q", len(blocks), out)
	}
	if !strings.HasPrefix(blocks[0], "Table: FIRST") || !strings.HasPrefix(blocks[1], "Table: SECOND") {
		t.Errorf("blocks out of order: %q", out)
	}
}

func TestFormat_Deterministic(t *testing.T) {
	table := tablespaceUsage()
	for k, v := range map[string]string{"a": "1", "b": "2", "c": "3", "d": "4", "e": "5"} {
		table.BusinessLogic[k] = v
	}

	first := Format([]TableMetadata{table})
	for i := 0; i < 20; i++ {
		if got := Format([]TableMetadata{table}); got != first {
			t.Fatalf("Format() not deterministic on iteration %d", i)
		}
	}
}

// loneBrace matches a brace that is not part of a doubled pair.
var loneBrace = regexp.MustCompile(`(^|[^{])\{([^{]|$)|(^|[^}])\}([^}]|$)`)

func TestFormat_EscapesBraces(t *testing.T) {
	table := TableMetadata{
		TableName:  "JOB{S}",
		TableOwner: []string{"OPS"},
		Columns: []ColumnMetadata{
			{ColumnName: "CONFIG", DataType: "JSON", Description: `holds {"retries": 3}`},
		},
		Relationships: []RelationshipMetadata{
			{RelatedTable: "RUNS", OnConditions: []string{"RUNS.META = '{x}'"}},
		},
		BusinessLogic: map[string]string{
			"PHASE_CODE": "{P: pending, R: running}",
		},
	}

	out := Format([]TableMetadata{table})

	for _, want := range []string{
		"Table: OPS.JOB{{S}}",
		`CONFIG (JSON): holds {{"retries": 3}}`,
		"Conditions: RUNS.META = '{{x}}'",
		"PHASE_CODE: {{P: pending, R: running}}",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}

	// Every brace run in the output must have even length.
	for _, run := range regexp.MustCompile(`\{+|\}+`).FindAllString(out, -1) {
		if len(run)%2 != 0 {
			t.Errorf("found unescaped brace run %q in %q", run, out)
		}
	}
	if loneBrace.MatchString(out) {
		t.Errorf("found single brace in output: %q", out)
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	inputs := []string{"", "plain", "{a}", "{{double}}", "}{", `{"k": {"n": 1}}`}
	for _, in := range inputs {
		if got := UnescapeBraces(EscapeBraces(in)); got != in {
			t.Errorf("UnescapeBraces(EscapeBraces(%q)) = %q", in, got)
		}
	}
}

func TestFormat_EmptyDescription(t *testing.T) {
	out := Format([]TableMetadata{{
		TableName: "T",
		Columns:   []ColumnMetadata{{ColumnName: "A", DataType: "NUMBER"}},
	}})
	if !strings.Contains(out, "\nA (NUMBER):\n") {
		t.Errorf("unexpected column rendering: %q", out)
	}
}
