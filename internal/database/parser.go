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
	"regexp"
	"strings"
)

// QueryContext contains information parsed from a natural language question
type QueryContext struct {
	CleanedQuery string // The question with database references removed
	Database     string // The referenced database name (empty if none)
	SetAsDefault bool   // Whether to make the database the new default
}

var (
	setDefaultPattern = regexp.MustCompile(`(?i)^\s*(?:use|switch to|set default)\s+(?:database|db)(?:\s+to)?\s+([A-Za-z0-9_\-]+)\s*$`)
	suffixPattern     = regexp.MustCompile(`(?i)\s+(?:on|in|against)\s+(?:database|db)\s+([A-Za-z0-9_\-]+)\s*[?.!]?\s*$`)
	prefixPattern     = regexp.MustCompile(`(?i)^\s*(?:database|db)\s+([A-Za-z0-9_\-]+)\s*:\s*`)
)

// ParseQueryForDatabase extracts a database reference from a question.
// Recognised forms are "use database X", "<question> on database X" and
// "database X: <question>".
func ParseQueryForDatabase(query string) *QueryContext {
	ctx := &QueryContext{CleanedQuery: query}

	if m := setDefaultPattern.FindStringSubmatch(query); m != nil {
		ctx.Database = m[1]
		ctx.SetAsDefault = true
		ctx.CleanedQuery = ""
		return ctx
	}

	if m := suffixPattern.FindStringSubmatch(query); m != nil {
		ctx.Database = m[1]
		ctx.CleanedQuery = strings.TrimSpace(suffixPattern.ReplaceAllString(query, ""))
		return ctx
	}

	if m := prefixPattern.FindStringSubmatch(query); m != nil {
		ctx.Database = m[1]
		ctx.CleanedQuery = strings.TrimSpace(prefixPattern.ReplaceAllString(query, ""))
		return ctx
	}

	return ctx
}

var (
	lineCommentPattern  = regexp.MustCompile(`--[^\n]*`)
	blockCommentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// LeadingKeyword returns the first keyword of a statement in upper case,
// skipping comments and opening parentheses
func LeadingKeyword(stmt string) string {
	stmt = blockCommentPattern.ReplaceAllString(stmt, " ")
	stmt = lineCommentPattern.ReplaceAllString(stmt, " ")
	stmt = strings.TrimLeft(stmt, " \t\r\n(")

	end := strings.IndexFunc(stmt, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_')
	})
	if end == -1 {
		end = len(stmt)
	}
	return strings.ToUpper(stmt[:end])
}

// IsReadOnlyStatement reports whether stmt starts with SELECT or WITH
func IsReadOnlyStatement(stmt string) bool {
	switch LeadingKeyword(stmt) {
	case "SELECT", "WITH":
		return true
	default:
		return false
	}
}

// CleanStatement trims whitespace and a single trailing semicolon, which
// the Oracle driver rejects
func CleanStatement(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	stmt = strings.TrimSuffix(stmt, ";")
	return strings.TrimSpace(stmt)
}
