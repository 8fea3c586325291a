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
	"sort"
	"strings"
)

var (
	braceEscaper   = strings.NewReplacer("{", "{{", "}", "}}")
	braceUnescaper = strings.NewReplacer("{{", "{", "}}", "}")
)

// EscapeBraces doubles every literal brace so the text can be used as a
// template substitution source without being read as a placeholder.
func EscapeBraces(s string) string {
	return braceEscaper.Replace(s)
}

// UnescapeBraces reverses EscapeBraces.
func UnescapeBraces(s string) string {
	return braceUnescaper.Replace(s)
}

// Format renders tables into the prompt description, one block per table in
// rank order, separated by blank lines. Identical input always produces
// identical output. An empty list yields the empty string.
func Format(tables []TableMetadata) string {
	if len(tables) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(tables))
	for _, t := range tables {
		blocks = append(blocks, formatTable(t))
	}
	return strings.Join(blocks, "\n\n")
}

func formatTable(t TableMetadata) string {
	var sb strings.Builder

	sb.WriteString("Table: ")
	sb.WriteString(EscapeBraces(t.QualifiedName()))

	sb.WriteString("\nColumns:")
	for _, col := range t.Columns {
		sb.WriteString("\n")
		sb.WriteString(EscapeBraces(col.ColumnName))
		sb.WriteString(" (")
		sb.WriteString(EscapeBraces(col.DataType))
		sb.WriteString("):")
		if col.Description != "" {
			sb.WriteString(" ")
			sb.WriteString(EscapeBraces(col.Description))
		}
	}

	sb.WriteString("\nRelationships:")
	for _, rel := range t.Relationships {
		conds := make([]string, len(rel.OnConditions))
		for i, c := range rel.OnConditions {
			conds[i] = EscapeBraces(c)
		}
		sb.WriteString("\nRelated Table: ")
		sb.WriteString(EscapeBraces(rel.RelatedTable))
		sb.WriteString(", Conditions: ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	sb.WriteString("\nBusiness Logic:")
	keys := make([]string, 0, len(t.BusinessLogic))
	for k := range t.BusinessLogic {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString("\n")
		sb.WriteString(EscapeBraces(k))
		sb.WriteString(": ")
		sb.WriteString(EscapeBraces(t.BusinessLogic[k]))
	}

	return sb.String()
}
